// Package config holds the explicit configuration record that drives a render
// pass, with defaults, clamping, permalinks and presets.
package config

import (
	"strings"

	"golang.org/x/exp/constraints"
)

// Theme selects the light or dark palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ColorMode selects how contour strokes are coloured.
type ColorMode string

const (
	ColorMono      ColorMode = "mono"
	ColorElevation ColorMode = "elevation"
	ColorFade      ColorMode = "fade"
)

// Bounds applied by Clamp.
const (
	MinDimension   = 100
	MaxDimension   = 8192
	MinOctaves     = 1
	MaxOctaves     = 8
	MinLevels      = 1
	MaxLevels      = 100
	MinPersistence = 0.05
	MaxPersistence = 0.95
	MinLacunarity  = 1.01
	MaxLacunarity  = 4.0
)

// Config is one wallpaper configuration. JSON names match the permalink format.
type Config struct {
	Width  int    `json:"width" yaml:"width,omitempty"`
	Height int    `json:"height" yaml:"height,omitempty"`
	Preset string `json:"preset" yaml:"preset,omitempty"`

	Theme       Theme  `json:"theme" yaml:"theme,omitempty"`
	AccentColor string `json:"accentColor" yaml:"accentColor,omitempty"`

	Seed             string    `json:"seed" yaml:"seed,omitempty"`
	NoiseScale       float64   `json:"noiseScale" yaml:"noiseScale,omitempty"`
	Octaves          int       `json:"octaves" yaml:"octaves,omitempty"`
	Persistence      float64   `json:"persistence" yaml:"persistence,omitempty"`
	Lacunarity       float64   `json:"lacunarity" yaml:"lacunarity,omitempty"`
	ContourLevels    int       `json:"contourLevels" yaml:"contourLevels,omitempty"`
	ContourColorMode ColorMode `json:"contourColorMode" yaml:"contourColorMode,omitempty"`
	ContourGlow      float64   `json:"contourGlow" yaml:"contourGlow,omitempty"`
	ContourColor     string    `json:"contourColor" yaml:"contourColor,omitempty"`
	NoiseBasis       string    `json:"noiseBasis,omitempty" yaml:"noiseBasis,omitempty"`

	ShowGrid        bool `json:"showGrid" yaml:"showGrid"`
	ShowAnnotations bool `json:"showAnnotations" yaml:"showAnnotations"`
	ShowCjkText     bool `json:"showCjkText" yaml:"showCjkText"`
	ShowFrames      bool `json:"showFrames" yaml:"showFrames"`
	ShowAccents     bool `json:"showAccents" yaml:"showAccents"`
	ShowScanLines   bool `json:"showScanLines" yaml:"showScanLines"`
	ShowDataPanel   bool `json:"showDataPanel" yaml:"showDataPanel"`
	ShowReticles    bool `json:"showReticles" yaml:"showReticles"`
	ShowCornerData  bool `json:"showCornerData" yaml:"showCornerData"`
	ShowZones       bool `json:"showZones" yaml:"showZones"`
	ShowHeroText    bool `json:"showHeroText" yaml:"showHeroText"`
}

// Defaults returns the stock configuration. Seed is left empty; callers pick
// one with entropy.RandomSeed when none is supplied.
func Defaults() Config {
	return Config{
		Width:            1920,
		Height:           1080,
		Preset:           "1080p",
		Theme:            ThemeLight,
		AccentColor:      "#FFE600",
		NoiseScale:       0.006,
		Octaves:          4,
		Persistence:      0.5,
		Lacunarity:       2.0,
		ContourLevels:    20,
		ContourColorMode: ColorMono,
		ContourColor:     "#888888",
		NoiseBasis:       "simplex",
		ShowGrid:         true,
		ShowAnnotations:  true,
		ShowCjkText:      true,
		ShowFrames:       true,
		ShowAccents:      true,
		ShowScanLines:    true,
		ShowDataPanel:    true,
		ShowReticles:     true,
		ShowCornerData:   true,
		ShowZones:        true,
	}
}

// Clamp forces every numeric field into its usable range and replaces unknown
// enum values and malformed colours with defaults. It never fails.
func (c *Config) Clamp() {
	d := Defaults()

	c.Width = clamp(c.Width, MinDimension, MaxDimension)
	c.Height = clamp(c.Height, MinDimension, MaxDimension)
	c.Octaves = clamp(c.Octaves, MinOctaves, MaxOctaves)
	c.ContourLevels = clamp(c.ContourLevels, MinLevels, MaxLevels)
	if !(c.NoiseScale > 0) {
		c.NoiseScale = d.NoiseScale
	}
	c.Persistence = clampFloat(c.Persistence, MinPersistence, MaxPersistence, d.Persistence)
	c.Lacunarity = clampFloat(c.Lacunarity, MinLacunarity, MaxLacunarity, d.Lacunarity)
	c.ContourGlow = clampFloat(c.ContourGlow, 0, 1, 0)

	switch c.Theme {
	case ThemeLight, ThemeDark:
	default:
		c.Theme = d.Theme
	}
	switch c.ContourColorMode {
	case ColorMono, ColorElevation, ColorFade:
	default:
		c.ContourColorMode = d.ContourColorMode
	}
	switch strings.ToLower(c.NoiseBasis) {
	case "simplex", "perlin":
		c.NoiseBasis = strings.ToLower(c.NoiseBasis)
	default:
		c.NoiseBasis = d.NoiseBasis
	}
	if !IsHexColor(c.AccentColor) {
		c.AccentColor = d.AccentColor
	}
	if !IsHexColor(c.ContourColor) {
		c.ContourColor = d.ContourColor
	}
	if _, ok := Resolutions[c.Preset]; !ok {
		c.Preset = PresetCustom
	}
}

// Clamped returns a clamped copy of c.
func (c Config) Clamped() Config {
	c.Clamp()
	return c
}

// IsHexColor reports whether s has the form #RRGGBB.
func IsHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat also maps NaN to fallback.
func clampFloat(v, lo, hi, fallback float64) float64 {
	if v != v {
		return fallback
	}
	return clamp(v, lo, hi)
}
