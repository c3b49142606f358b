// Package api serves render passes over HTTP.
// GET endpoints are public. POST /api/v1/cache/invalidate requires a bearer token.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/persistence"
	"github.com/talgya/topowall/internal/render"
)

const (
	maxLiveConns     = 4
	maxBodyBytes     = 64 << 10
	maxHistoryLimit  = 200
	defaultHistory   = 20
	maxRenderScale   = 3.0
	rendersPerMinute = 30
)

// Server serves render passes over HTTP.
type Server struct {
	Engine   *engine.Engine
	DB       *persistence.DB // optional; history endpoints report 503 without it
	Presets  config.Presets
	Port     int
	AdminKey string        // Bearer token for POST endpoints. Empty = POST disabled.
	Debounce time.Duration // live preview debounce; 0 uses engine.DefaultDebounce

	// RenderLimit caps render requests per IP per minute; 0 uses the default,
	// negative disables limiting.
	RenderLimit int

	limiter   *RateLimiter
	upgrader  websocket.Upgrader
	liveConns int32
	started   time.Time
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	limit := s.RenderLimit
	if limit == 0 {
		limit = rendersPerMinute
	}
	if s.limiter != nil {
		s.limiter.Close()
	}
	s.limiter = NewRateLimiter(limit, time.Minute)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  16 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	if s.Presets == nil {
		s.Presets = config.BuiltinPresets()
	}
	s.started = time.Now()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/defaults", s.handleDefaults)
	mux.HandleFunc("/api/v1/presets", s.handlePresets)
	mux.HandleFunc("/api/v1/randomize", s.handleRandomize)
	mux.HandleFunc("/api/v1/permalink", s.handlePermalink)
	mux.HandleFunc("/api/v1/render", RateLimitMiddleware(s.limiter, s.handleRender))
	mux.HandleFunc("/api/v1/renders", s.handleRenders)
	mux.HandleFunc("/api/v1/renders/", s.handleRenderDetail)
	mux.HandleFunc("/api/v1/last", s.handleLast)
	mux.HandleFunc("/api/v1/live", s.handleLive)

	mux.HandleFunc("/api/v1/cache/invalidate", s.adminOnly(s.handleInvalidate))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine and returns the server
// so the caller can shut it down.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Close releases the rate limiter's background cleanup. Call it after the
// HTTP server has shut down.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TOPOWALL_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":       "topowall",
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"cache":      s.Engine.Stats(),
		"live_conns": atomic.LoadInt32(&s.liveConns),
		"presets":    s.Presets.Names(),
	}
	if s.DB != nil {
		if n, err := s.DB.CountRenders(); err == nil {
			status["renders"] = n
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"config":      config.Defaults(),
		"resolutions": config.Resolutions,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, map[string]any{"presets": s.Presets.Names()})
		return
	}
	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Presets.Apply(&cfg, name, entropy.New(entropy.RandomSeed())); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeConfig(w, cfg)
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg.Randomize(entropy.New(entropy.RandomSeed()))
	writeConfig(w, cfg)
}

// handlePermalink encodes a configuration (POST body or query) or decodes ?p=.
func (s *Server) handlePermalink(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeConfig(w, cfg)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := s.Engine.Generate(cfg)
	s.record(out)

	q := r.URL.Query()
	switch q.Get("format") {
	case "json":
		resp := map[string]any{
			"permalink": config.Encode(out.Config),
			"output":    out,
		}
		if q.Get("heightmap") == "1" {
			resp["heightmap"] = out.Heightmap
		}
		writeJSON(w, resp)
	case "", "png":
		scale := 1.0
		if v, err := strconv.ParseFloat(q.Get("scale"), 64); err == nil && v > 0 {
			scale = min(v, maxRenderScale)
		}
		// The raster never exceeds the dimension cap on its longer side.
		longest := float64(max(out.Config.Width, out.Config.Height))
		scale = min(scale, config.MaxDimension/longest)
		var buf bytes.Buffer
		if err := render.EncodePNG(&buf, render.Draw(out, render.Options{Scale: scale})); err != nil {
			slog.Error("png encode failed", "error", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		slog.Debug("png rendered", "seed", out.Config.Seed, "size", humanize.Bytes(uint64(buf.Len())))
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Topowall-Permalink", config.Encode(out.Config))
		w.Write(buf.Bytes())
	default:
		http.Error(w, "format must be png or json", http.StatusBadRequest)
	}
}

// record stores a history row when a database is configured.
func (s *Server) record(out *engine.Output) {
	if s.DB == nil {
		return
	}
	err := s.DB.RecordRender(&persistence.Render{
		Seed:       out.Config.Seed,
		Width:      out.Config.Width,
		Height:     out.Config.Height,
		Permalink:  config.Encode(out.Config),
		Contours:   len(out.Contours),
		Zones:      len(out.Zones),
		DurationMS: out.Elapsed.Milliseconds(),
	})
	if err != nil {
		slog.Warn("render history write failed", "error", err)
	}
}

func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := defaultHistory
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxHistoryLimit)
	}
	renders, err := s.DB.RecentRenders(limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if renders == nil {
		renders = []persistence.Render{}
	}
	writeJSON(w, renders)
}

func (s *Server) handleRenderDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/renders/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	rec, err := s.DB.GetRender(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	link, err := s.DB.GetMeta(persistence.MetaLastConfig)
	if errors.Is(err, persistence.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	cfg, ok := config.Decode(link)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeConfig(w, cfg)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.Engine.Invalidate()
	resp := map[string]any{"invalidated": true}
	if s.DB != nil {
		if n, err := s.DB.PruneHeightmaps(0); err == nil {
			resp["heightmaps_pruned"] = n
		}
	}
	writeJSON(w, resp)
}

// requestConfig resolves the configuration a request asks for: a JSON body on
// POST, otherwise a ?p= permalink, otherwise defaults; query overrides for
// seed, width, height, preset and levels apply last. An empty seed gets a
// random one.
func (s *Server) requestConfig(r *http.Request) (config.Config, error) {
	cfg := config.Defaults()
	q := r.URL.Query()

	switch {
	case r.Method == http.MethodPost && r.Body != nil:
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&cfg); err != nil {
			return config.Config{}, fmt.Errorf("invalid config body: %w", err)
		}
	case q.Get("p") != "":
		decoded, ok := config.Decode(q.Get("p"))
		if !ok {
			return config.Config{}, errors.New("invalid permalink")
		}
		cfg = decoded
	}

	if v := q.Get("seed"); v != "" {
		cfg.Seed = v
	}
	if v := q.Get("preset"); v != "" && !cfg.ApplyResolution(v) {
		return config.Config{}, fmt.Errorf("unknown resolution preset %q", v)
	}
	for key, dst := range map[string]*int{"width": &cfg.Width, "height": &cfg.Height, "levels": &cfg.ContourLevels} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return config.Config{}, fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	if cfg.Seed == "" {
		cfg.Seed = entropy.RandomSeed()
	}
	cfg.Clamp()
	return cfg, nil
}

func writeConfig(w http.ResponseWriter, cfg config.Config) {
	writeJSON(w, map[string]any{
		"config":    cfg,
		"permalink": config.Encode(cfg),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
