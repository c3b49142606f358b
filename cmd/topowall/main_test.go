package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/persistence"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func TestOutputPath(t *testing.T) {
	got := outputPath("wall-%Y%m%d-%H%M%S-{seed}.png", "abc", fixedNow)
	if got != "wall-20240309-140507-abc.png" {
		t.Errorf("outputPath = %q", got)
	}
	if outputPath("-", "abc", fixedNow) != "-" {
		t.Error("stdout marker was expanded")
	}
}

func TestBuildConfigLayers(t *testing.T) {
	base := config.Defaults()
	base.Seed = "link"
	base.ContourLevels = 33
	o := options{permalink: config.Encode(base), resolution: "4k", levels: 12}

	cfg, err := buildConfig(o, config.BuiltinPresets())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != "link" || cfg.Width != 3840 || cfg.ContourLevels != 12 {
		t.Errorf("config %+v", cfg)
	}

	cfg, err = buildConfig(options{width: 640, height: 10}, config.BuiltinPresets())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != config.PresetCustom || cfg.Height != config.MinDimension || cfg.Seed == "" {
		t.Errorf("config %+v", cfg)
	}

	for _, bad := range []options{{permalink: "%%%"}, {resolution: "8k"}, {preset: "nope"}} {
		if _, err := buildConfig(bad, config.BuiltinPresets()); err == nil {
			t.Errorf("%+v: expected error", bad)
		}
	}
}

func TestBuildConfigSeedFlagWins(t *testing.T) {
	names := config.BuiltinPresets().Names()
	cfg, err := buildConfig(options{preset: names[0], random: true, seed: "mine"}, config.BuiltinPresets())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != "mine" {
		t.Errorf("seed %q, want mine", cfg.Seed)
	}
}

func TestRunWritesPNGAndHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	pattern := filepath.Join(dir, "out-{seed}.png")

	err := run([]string{"-seed", "cli", "-width", "240", "-height", "160", "-o", pattern, "-db", dbPath}, &bytes.Buffer{}, fixedNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out-cli.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 160 {
		t.Errorf("image bounds %v", b)
	}

	db, err := persistence.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if n, _ := db.CountRenders(); n != 1 {
		t.Errorf("history has %d renders, want 1", n)
	}
}

func TestRunReportsDatabaseDirError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(blocker, "sub", "history.db")

	err := run([]string{"-seed", "x", "-width", "120", "-height", "120", "-o", "-", "-db", dbPath}, &bytes.Buffer{}, fixedNow)
	if err == nil || !strings.Contains(err.Error(), "create database directory") {
		t.Errorf("got %v, want a database directory error", err)
	}
}

func TestRunJSONToStdout(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"-seed", "j", "-width", "200", "-height", "200", "-levels", "7", "-json", "-o", "-"}, &buf, fixedNow); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Permalink string `json:"permalink"`
		Output    struct {
			Contours []json.RawMessage `json:"contours"`
		} `json:"output"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Output.Contours) != 7 {
		t.Errorf("got %d contours, want 7", len(got.Output.Contours))
	}
	if cfg, ok := config.Decode(got.Permalink); !ok || cfg.Seed != "j" {
		t.Errorf("permalink decodes to %+v", cfg)
	}
}

func TestRunList(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"-list"}, &buf, fixedNow); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1080p") || !strings.Contains(buf.String(), "presets:") {
		t.Errorf("list output %q", buf.String())
	}
}
