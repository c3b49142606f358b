package render

import (
	"image/color"
	"math"
	"strconv"

	"github.com/talgya/topowall/internal/config"
)

// Palette is the colour set for one theme.
type Palette struct {
	Background    color.NRGBA
	ContourLine   color.NRGBA
	ContourIndex  color.NRGBA
	FrameLine     color.NRGBA
	TextSecondary color.NRGBA
	Accent        color.NRGBA
}

var (
	lightPalette = Palette{
		Background:    rgb(0xEC, 0xEB, 0xE6),
		ContourLine:   rgb(0xA8, 0xA6, 0x9E),
		ContourIndex:  rgb(0x6E, 0x6C, 0x66),
		FrameLine:     rgb(0x2B, 0x2A, 0x28),
		TextSecondary: rgb(0x55, 0x54, 0x50),
	}
	darkPalette = Palette{
		Background:    rgb(0x12, 0x13, 0x15),
		ContourLine:   rgb(0x3C, 0x3F, 0x44),
		ContourIndex:  rgb(0x6A, 0x6E, 0x75),
		FrameLine:     rgb(0xD8, 0xD8, 0xD4),
		TextSecondary: rgb(0x9A, 0x9C, 0xA0),
	}
)

// PaletteFor returns the theme palette with the given accent. A contour colour
// other than the stock default replaces the plain contour line colour.
func PaletteFor(c config.Config) Palette {
	p := lightPalette
	if c.Theme == config.ThemeDark {
		p = darkPalette
	}
	p.Accent, _ = ParseHex(config.Defaults().AccentColor)
	if accent, ok := ParseHex(c.AccentColor); ok {
		p.Accent = accent
	}
	if c.ContourColor != config.Defaults().ContourColor {
		if line, ok := ParseHex(c.ContourColor); ok {
			p.ContourLine = line
		}
	}
	return p
}

// ParseHex parses #RRGGBB.
func ParseHex(s string) (color.NRGBA, bool) {
	if !config.IsHexColor(s) {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return rgb(uint8(v>>16), uint8(v>>8), uint8(v)), true
}

// Lerp blends a toward b by t in [0,1], rounding each channel.
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// withAlpha scales the colour's opacity by alpha.
func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	alpha = math.Max(0, math.Min(1, alpha))
	c.A = uint8(math.Round(float64(c.A) * alpha))
	return c
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}
