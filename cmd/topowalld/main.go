// Command topowalld serves topographic wallpaper renders over HTTP and websocket.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/topowall/internal/api"
	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/persistence"
)

// heightmapsKept is how many cached heightmaps survive each prune.
const heightmapsKept = 64

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbPath := envOrDefault("TOPOWALL_DB", "data/topowall.db")
	apiPort := envIntOrDefault("TOPOWALL_PORT", 8080)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		slog.Error("failed to create data directory", "path", filepath.Dir(dbPath), "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if n, err := db.CountRenders(); err == nil {
		slog.Info("database opened", "path", dbPath, "renders", n)
	}

	// ── Presets ──────────────────────────────────────────────────────
	presets := config.BuiltinPresets()
	if path := os.Getenv("TOPOWALL_PRESETS"); path != "" {
		if presets, err = config.LoadPresets(path); err != nil {
			slog.Error("failed to load presets", "path", path, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("presets loaded", "names", presets.Names())

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.New(db)
	eng.Workers = envIntOrDefault("TOPOWALL_WORKERS", 0)

	adminKey := os.Getenv("TOPOWALL_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("TOPOWALL_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	server := &api.Server{
		Engine:      eng,
		DB:          db,
		Presets:     presets,
		Port:        apiPort,
		AdminKey:    adminKey,
		Debounce:    time.Duration(envIntOrDefault("TOPOWALL_DEBOUNCE_MS", 0)) * time.Millisecond,
		RenderLimit: envIntOrDefault("TOPOWALL_RENDER_LIMIT", 0),
	}
	srv := server.Start()

	// ── Heightmap cache pruning ─────────────────────────────────────
	done := make(chan struct{})
	pruned := make(chan struct{})
	go func() {
		defer close(pruned)
		pruneHeightmaps(db, time.Hour, done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	server.Close()
	close(done)
	<-pruned
	slog.Info("stopped", "stats", eng.Stats())
}

// pruneHeightmaps trims the heightmap cache every interval until done is closed.
func pruneHeightmaps(db *persistence.DB, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := db.PruneHeightmaps(heightmapsKept)
			if err != nil {
				slog.Error("heightmap prune failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("heightmaps pruned", "removed", n)
			}
		case <-done:
			return
		}
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
