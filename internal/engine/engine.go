// Package engine runs render passes: heightmap, contours and zones for one
// configuration, with explicit caches owned by each Engine instance.
package engine

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/contour"
	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/geom"
	"github.com/talgya/topowall/internal/terrain"
	"github.com/talgya/topowall/internal/zones"
)

// HeightmapKey identifies a heightmap. Any field change invalidates it.
type HeightmapKey struct {
	Seed        string
	GridWidth   int
	GridHeight  int
	Scale       float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
	Basis       terrain.Basis
}

// String is the fingerprint used as the persistent store key.
func (k HeightmapKey) String() string {
	return fmt.Sprintf("%s|%dx%d|%s|%d|%s|%s|%s",
		strconv.Quote(k.Seed), k.GridWidth, k.GridHeight,
		strconv.FormatFloat(k.Scale, 'g', -1, 64), k.Octaves,
		strconv.FormatFloat(k.Persistence, 'g', -1, 64),
		strconv.FormatFloat(k.Lacunarity, 'g', -1, 64), k.Basis)
}

// ContourKey identifies a contour set: the heightmap plus the level count.
type ContourKey struct {
	HeightmapKey
	Levels int
}

// Store is an optional second-level heightmap cache, typically SQLite backed.
// Any LoadHeightmap error counts as a miss.
type Store interface {
	LoadHeightmap(key string) (*terrain.Heightmap, error)
	SaveHeightmap(key string, hm *terrain.Heightmap) error
}

// Stats counts cache activity since the engine was created.
type Stats struct {
	HeightmapHits   uint64 `json:"heightmapHits"`
	HeightmapMisses uint64 `json:"heightmapMisses"`
	StoreHits       uint64 `json:"storeHits"`
	ContourHits     uint64 `json:"contourHits"`
	ContourMisses   uint64 `json:"contourMisses"`
	Passes          uint64 `json:"passes"`
}

// Output is the result of one render pass.
type Output struct {
	Config       config.Config      `json:"config"`
	Heightmap    *terrain.Heightmap `json:"-"`
	GridWidth    int                `json:"gridWidth"`
	GridHeight   int                `json:"gridHeight"`
	Thresholds   []float64          `json:"thresholds"`
	Contours     []contour.Contour  `json:"contours"`
	Zones        []zones.Zone       `json:"zones"`
	Regions      []zones.Region     `json:"regions"`
	Tessellation *geom.Tessellation `json:"-"`
	Elapsed      time.Duration      `json:"elapsedNs"`
}

// Engine owns a single-entry heightmap cache and a single-entry contour
// cache. Zones are recomputed every pass. Separate engines share nothing.
type Engine struct {
	// Workers bounds heightmap row parallelism; <= 0 uses GOMAXPROCS.
	Workers int
	// Labels overrides the zone label pool.
	Labels []string

	mu    sync.Mutex
	store Store

	hmKey HeightmapKey
	hm    *terrain.Heightmap

	ctKey    ContourKey
	contours []contour.Contour
	ctValid  bool

	stats Stats
}

// New creates an engine. store may be nil.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Stats returns a snapshot of the cache counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Invalidate drops both in-memory caches.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hm = nil
	e.contours = nil
	e.ctValid = false
}

// KeyFor returns the heightmap key a configuration resolves to after clamping.
func KeyFor(cfg config.Config) HeightmapKey {
	cfg.Clamp()
	gw, gh := terrain.GridSize(cfg.Width, cfg.Height)
	return HeightmapKey{
		Seed:        cfg.Seed,
		GridWidth:   gw,
		GridHeight:  gh,
		Scale:       cfg.NoiseScale,
		Octaves:     cfg.Octaves,
		Persistence: cfg.Persistence,
		Lacunarity:  cfg.Lacunarity,
		Basis:       terrain.ParseBasis(cfg.NoiseBasis),
	}
}

// Generate runs one pass for cfg. The configuration is clamped first, so any
// input produces an output.
func (e *Engine) Generate(cfg config.Config) *Output {
	start := time.Now()
	cfg.Clamp()
	key := KeyFor(cfg)

	hm, contours := e.terrain(key, cfg.ContourLevels)
	thresholds := contour.Values(contours)

	out := &Output{
		Config:     cfg,
		Heightmap:  hm,
		GridWidth:  key.GridWidth,
		GridHeight: key.GridHeight,
		Thresholds: thresholds,
		Contours:   contours,
	}

	if cfg.ShowZones {
		res := zones.Synthesize(zones.Input{
			Heightmap:    hm,
			Thresholds:   thresholds,
			CanvasWidth:  float64(cfg.Width),
			CanvasHeight: float64(cfg.Height),
			Labels:       e.Labels,
		}, entropy.ForLayer(cfg.Seed, zones.RNGLayer))
		out.Zones = res.Zones
		out.Regions = res.Regions
		out.Tessellation = res.Tessellation
	}

	out.Elapsed = time.Since(start)
	slog.Debug("render pass complete",
		"seed", cfg.Seed,
		"grid", fmt.Sprintf("%dx%d", key.GridWidth, key.GridHeight),
		"contours", len(contours),
		"zones", len(out.Zones),
		"elapsed", out.Elapsed,
	)
	return out
}

// terrain returns the heightmap and contours for key, consulting the caches.
func (e *Engine) terrain(key HeightmapKey, levels int) (*terrain.Heightmap, []contour.Contour) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Passes++

	if e.hm != nil && e.hmKey == key {
		e.stats.HeightmapHits++
	} else {
		e.stats.HeightmapMisses++
		e.hm = e.loadOrSynthesize(key)
		e.hmKey = key
		e.ctValid = false
	}

	ck := ContourKey{HeightmapKey: key, Levels: levels}
	if e.ctValid && e.ctKey == ck {
		e.stats.ContourHits++
	} else {
		e.stats.ContourMisses++
		e.contours = contour.Extract(e.hm, levels)
		e.ctKey = ck
		e.ctValid = true
	}
	return e.hm, e.contours
}

func (e *Engine) loadOrSynthesize(key HeightmapKey) *terrain.Heightmap {
	fp := key.String()
	if e.store != nil {
		hm, err := e.store.LoadHeightmap(fp)
		if err == nil && hm.Width == key.GridWidth && hm.Height == key.GridHeight {
			e.stats.StoreHits++
			return hm
		}
	}

	hm := terrain.Synthesize(terrain.Params{
		GridWidth:   key.GridWidth,
		GridHeight:  key.GridHeight,
		Seed:        key.Seed,
		Scale:       key.Scale,
		Octaves:     key.Octaves,
		Persistence: key.Persistence,
		Lacunarity:  key.Lacunarity,
		Basis:       key.Basis,
		Workers:     e.Workers,
	})
	if e.store != nil {
		if err := e.store.SaveHeightmap(fp, hm); err != nil {
			slog.Warn("heightmap store write failed", "key", fp, "error", err)
		}
	}
	return hm
}
