// Command topowall renders a single topographic wallpaper to a PNG file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/persistence"
	"github.com/talgya/topowall/internal/render"
)

// defaultOutput is a strftime pattern; {seed} is replaced with the seed.
const defaultOutput = "topowall-%Y%m%d-%H%M%S-{seed}.png"

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("topowall failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	out        string
	permalink  string
	seed       string
	preset     string
	resolution string
	presetFile string
	dbPath     string
	width      int
	height     int
	levels     int
	scale      float64
	random     bool
	dumpJSON   bool
	list       bool
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("topowall", flag.ContinueOnError)
	fs.StringVar(&o.out, "o", envOrDefault("TOPOWALL_OUT", defaultOutput), "output path (strftime pattern, {seed} expands); - for stdout")
	fs.StringVar(&o.permalink, "p", "", "permalink to render")
	fs.StringVar(&o.seed, "seed", "", "seed (random when empty)")
	fs.StringVar(&o.preset, "preset", "", "named style preset")
	fs.StringVar(&o.resolution, "res", "", "resolution preset (1080p, 1440p, 4k, phone, ultrawide)")
	fs.StringVar(&o.presetFile, "presets", os.Getenv("TOPOWALL_PRESETS"), "YAML file with extra presets")
	fs.StringVar(&o.dbPath, "db", os.Getenv("TOPOWALL_DB"), "SQLite database for history and heightmap cache")
	fs.IntVar(&o.width, "width", 0, "canvas width")
	fs.IntVar(&o.height, "height", 0, "canvas height")
	fs.IntVar(&o.levels, "levels", 0, "contour levels")
	fs.Float64Var(&o.scale, "scale", envFloatOrDefault("TOPOWALL_SCALE", 1), "device pixel ratio")
	fs.BoolVar(&o.random, "random", false, "randomize noise and contour parameters")
	fs.BoolVar(&o.dumpJSON, "json", false, "write the render pass as JSON instead of PNG")
	fs.BoolVar(&o.list, "list", false, "list presets and resolutions, then exit")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	err := fs.Parse(args)
	return o, err
}

func run(args []string, stdout io.Writer, now time.Time) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	setupLogger(o.verbose)

	presets := config.BuiltinPresets()
	if o.presetFile != "" {
		if presets, err = config.LoadPresets(o.presetFile); err != nil {
			return err
		}
	}
	if o.list {
		fmt.Fprintln(stdout, "presets:", strings.Join(presets.Names(), ", "))
		fmt.Fprintln(stdout, "resolutions:", strings.Join(slices.Sorted(maps.Keys(config.Resolutions)), ", "))
		return nil
	}

	cfg, err := buildConfig(o, presets)
	if err != nil {
		return err
	}

	var store engine.Store
	var db *persistence.DB
	if o.dbPath != "" {
		if dir := filepath.Dir(o.dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err = persistence.Open(o.dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		store = db
	}

	eng := engine.New(store)
	out := eng.Generate(cfg)
	slog.Info("render pass complete",
		"seed", out.Config.Seed,
		"size", fmt.Sprintf("%dx%d", out.Config.Width, out.Config.Height),
		"contours", len(out.Contours),
		"zones", len(out.Zones),
		"elapsed", out.Elapsed.Round(time.Millisecond),
	)

	if db != nil {
		err := db.RecordRender(&persistence.Render{
			Seed:       out.Config.Seed,
			Width:      out.Config.Width,
			Height:     out.Config.Height,
			Permalink:  config.Encode(out.Config),
			Contours:   len(out.Contours),
			Zones:      len(out.Zones),
			DurationMS: out.Elapsed.Milliseconds(),
		})
		if err != nil {
			slog.Warn("history write failed", "error", err)
		}
	}

	path := outputPath(o.out, out.Config.Seed, now)
	var w io.Writer = stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	cw := &countingWriter{w: w}

	if o.dumpJSON {
		enc := json.NewEncoder(cw)
		enc.SetIndent("", "  ")
		err = enc.Encode(map[string]any{"permalink": config.Encode(out.Config), "output": out})
	} else {
		err = render.EncodePNG(cw, render.Draw(out, render.Options{Scale: o.scale}))
	}
	if err != nil {
		return err
	}
	slog.Info("wrote wallpaper", "path", path, "bytes", humanize.Bytes(uint64(cw.n)), "permalink", config.Encode(out.Config))
	return nil
}

// buildConfig layers the configuration: permalink or defaults, then preset,
// resolution, explicit flags, randomization and finally a seed if still empty.
func buildConfig(o options, presets config.Presets) (config.Config, error) {
	cfg := config.Defaults()
	if o.permalink != "" {
		decoded, ok := config.Decode(o.permalink)
		if !ok {
			return config.Config{}, errors.New("invalid permalink")
		}
		cfg = decoded
	}

	rng := entropy.New(entropy.RandomSeed())
	if o.preset != "" {
		if err := presets.Apply(&cfg, o.preset, rng); err != nil {
			return config.Config{}, err
		}
	}
	if o.resolution != "" && !cfg.ApplyResolution(o.resolution) {
		return config.Config{}, fmt.Errorf("unknown resolution %q", o.resolution)
	}
	if o.width > 0 {
		cfg.Width, cfg.Preset = o.width, config.PresetCustom
	}
	if o.height > 0 {
		cfg.Height, cfg.Preset = o.height, config.PresetCustom
	}
	if o.levels > 0 {
		cfg.ContourLevels = o.levels
	}
	if o.random {
		cfg.Randomize(rng)
	}
	if o.seed != "" {
		cfg.Seed = o.seed
	}
	if cfg.Seed == "" {
		cfg.Seed = entropy.RandomSeed()
	}
	return cfg.Clamped(), nil
}

func outputPath(pattern, seed string, now time.Time) string {
	if pattern == "-" {
		return pattern
	}
	return strings.ReplaceAll(strftime.Format(pattern, now), "{seed}", seed)
}

// setupLogger logs text to a terminal and JSON otherwise.
func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
