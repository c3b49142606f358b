package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/geom"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#FFE600", color.NRGBA{0xFF, 0xE6, 0x00, 0xFF}, true},
		{"#0a0b0c", color.NRGBA{0x0A, 0x0B, 0x0C, 0xFF}, true},
		{"FFE600", color.NRGBA{}, false},
		{"#FFF", color.NRGBA{}, false},
		{"#GGGGGG", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHex(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLerp(t *testing.T) {
	a := color.NRGBA{0, 0, 0, 255}
	b := color.NRGBA{200, 100, 50, 255}
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp t=0 = %v", got)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp t=1 = %v", got)
	}
	if got := Lerp(a, b, 0.5); got != (color.NRGBA{100, 50, 25, 255}) {
		t.Errorf("Lerp t=0.5 = %v", got)
	}
}

func TestPaletteFor(t *testing.T) {
	c := config.Defaults()
	c.Theme = config.ThemeDark
	c.AccentColor = "#FF0000"
	p := PaletteFor(c)
	if p.Background != darkPalette.Background {
		t.Error("dark theme not selected")
	}
	if p.Accent != (color.NRGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("accent = %v", p.Accent)
	}
	if p.ContourLine != darkPalette.ContourLine {
		t.Error("default contour colour overrode the palette")
	}

	c.ContourColor = "#00FF00"
	if p := PaletteFor(c); p.ContourLine != (color.NRGBA{0, 0xFF, 0, 0xFF}) {
		t.Errorf("custom contour colour ignored: %v", p.ContourLine)
	}
}

func TestStrokeSegmentCoverage(t *testing.T) {
	c := NewCanvas(20, 20, 1)
	c.Clear(color.White)
	c.StrokeSegments([][2]geom.Point{{geom.Pt(2, 10), geom.Pt(18, 10)}}, 2, color.NRGBA{A: 255})

	img := c.Image()
	if r, _, _, _ := img.At(10, 10).RGBA(); r != 0 {
		t.Errorf("pixel on the stroke not painted: r=%d", r)
	}
	if r, _, _, _ := img.At(10, 2).RGBA(); r != 0xFFFF {
		t.Errorf("pixel off the stroke painted: r=%d", r)
	}
}

func TestFillPolygonsScaled(t *testing.T) {
	c := NewCanvas(10, 10, 2)
	if b := c.Image().Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("scaled canvas bounds %v", b)
	}
	c.Clear(color.White)
	square := geom.Polygon{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(5, 5), geom.Pt(0, 5)}
	c.FillPolygons([]geom.Polygon{square}, color.NRGBA{A: 255})
	img := c.Image()
	if r, _, _, _ := img.At(5, 5).RGBA(); r != 0 {
		t.Error("inside of the square not filled")
	}
	if r, _, _, _ := img.At(15, 15).RGBA(); r != 0xFFFF {
		t.Error("outside of the square filled")
	}
}

func TestHatchStaysInside(t *testing.T) {
	square := geom.Polygon{geom.Pt(0, 0), geom.Pt(30, 0), geom.Pt(30, 30), geom.Pt(0, 30)}
	segs := Hatch([]geom.Polygon{square}, 3)
	if len(segs) == 0 {
		t.Fatal("no hatch lines")
	}
	const eps = 1e-9
	for _, s := range segs {
		for _, p := range s {
			if p.X() < -eps || p.X() > 30+eps || p.Y() < -eps || p.Y() > 30+eps {
				t.Fatalf("hatch point %v outside the square", p)
			}
		}
		// 45 degrees: dx == -dy.
		d := s[1].Sub(s[0])
		if diff := d.X() + d.Y(); diff > 1e-6 || diff < -1e-6 {
			t.Errorf("hatch segment %v not diagonal", s)
		}
	}
	if Hatch(nil, 3) != nil {
		t.Error("hatch of nothing")
	}
}

func TestSizing(t *testing.T) {
	if got := HatchSpacing(1920); got != 6 {
		t.Errorf("HatchSpacing(1920) = %v, want 6", got)
	}
	if got := HatchSpacing(400); got != 3 {
		t.Errorf("HatchSpacing(400) = %v, want 3", got)
	}
	if got := LabelSize(1920, 1080); got != 13 {
		t.Errorf("LabelSize = %v, want 13", got)
	}
	if got := LabelSize(200, 100); got != 8 {
		t.Errorf("LabelSize small = %v, want 8", got)
	}
}

func TestDrawPass(t *testing.T) {
	for _, mode := range []config.ColorMode{config.ColorMono, config.ColorElevation, config.ColorFade} {
		cfg := config.Defaults()
		cfg.Seed = "render"
		cfg.Width, cfg.Height = 320, 200
		cfg.ContourColorMode = mode
		cfg.ContourGlow = 0.5
		out := engine.New(nil).Generate(cfg)

		img := Draw(out, Options{Scale: 1})
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
			t.Fatalf("%s: image bounds %v", mode, b)
		}
		colors := make(map[color.RGBA]int)
		for y := 0; y < 200; y += 3 {
			for x := 0; x < 320; x += 3 {
				colors[img.RGBAAt(x, y)]++
			}
		}
		if len(colors) < 3 {
			t.Errorf("%s: only %d distinct colours, nothing drawn", mode, len(colors))
		}

		var buf bytes.Buffer
		if err := EncodePNG(&buf, img); err != nil {
			t.Fatal(err)
		}
		decoded, err := png.Decode(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if decoded.Bounds() != (image.Rect(0, 0, 320, 200)) {
			t.Errorf("%s: decoded bounds %v", mode, decoded.Bounds())
		}
	}
}

func TestLabelFace(t *testing.T) {
	face := labelFace(12)
	defer face.Close()
	if face.Metrics().Height <= 0 {
		t.Error("label face has no height")
	}
}
