// Package render draws an engine pass to a raster image: background, contour
// lines and the zone overlay with labels.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/talgya/topowall/internal/config"
	"github.com/talgya/topowall/internal/engine"
	"github.com/talgya/topowall/internal/geom"
	"github.com/talgya/topowall/internal/zones"
)

// Stroke and overlay constants.
const (
	IndexEvery       = 5
	IndexLineWidth   = 1.4
	ContourLineWidth = 0.6

	ZoneTintAlpha   = 0.08
	ZoneHatchAlpha  = 0.15
	ZoneHatchWidth  = 0.8
	ZoneLabelAlpha  = 0.6
	BorderAlpha     = 0.2
	BorderWidth     = 1.0
	HighlightAlpha  = 0.5
	HighlightWidth  = 1.5
	hatchPerPixel   = 300
	labelFraction   = 0.012
	minLabelSize    = 8
	minHatchSpacing = 3
)

// Options controls rasterization.
type Options struct {
	// Scale is the device pixel ratio; the image is Scale times the logical size.
	Scale float64
}

// Draw rasterizes out at its configured logical size.
func Draw(out *engine.Output, opts Options) *image.RGBA {
	cfg := out.Config
	pal := PaletteFor(cfg)
	c := NewCanvas(cfg.Width, cfg.Height, opts.Scale)

	c.Clear(pal.Background)
	drawContours(c, out, pal)
	if cfg.ShowZones {
		drawZones(c, cfg, out.Zones, pal)
	}
	return c.Image()
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawContours(c *Canvas, out *engine.Output, pal Palette) {
	cfg := out.Config
	sx := float64(cfg.Width) / float64(out.GridWidth)
	sy := float64(cfg.Height) / float64(out.GridHeight)
	total := len(out.Contours)

	for i, ct := range out.Contours {
		isIndex := i%IndexEvery == 0
		t := 0.0
		if total > 1 {
			t = float64(i) / float64(total-1)
		}

		width := ContourLineWidth
		base, alpha := pal.ContourLine, 1.0
		if isIndex {
			width = IndexLineWidth
			base = pal.ContourIndex
		}
		switch cfg.ContourColorMode {
		case config.ColorElevation:
			base = Lerp(pal.ContourLine, pal.Accent, t)
		case config.ColorFade:
			alpha = 0.15 + 0.85*t
		}

		var paths [][]geom.Point
		for _, poly := range ct.Polygons {
			for _, ring := range poly {
				path := make([]geom.Point, len(ring))
				for k, p := range ring {
					path[k] = geom.Pt(p.X()*sx, p.Y()*sy)
				}
				paths = append(paths, path)
			}
		}
		if len(paths) == 0 {
			continue
		}
		if cfg.ContourGlow > 0 {
			glow := withAlpha(base, alpha*0.25*cfg.ContourGlow)
			c.StrokePaths(paths, true, width*(1+4*cfg.ContourGlow), glow)
		}
		c.StrokePaths(paths, true, width, withAlpha(base, alpha))
	}
}

// HatchSpacing is the distance between diagonal hatch lines for a canvas width.
func HatchSpacing(width int) float64 {
	return math.Max(minHatchSpacing, math.Round(float64(width)/hatchPerPixel))
}

// LabelSize is the zone label font size for a canvas.
func LabelSize(width, height int) float64 {
	return math.Max(minLabelSize, math.Round(float64(min(width, height))*labelFraction))
}

func drawZones(c *Canvas, cfg config.Config, zs []zones.Zone, pal Palette) {
	if len(zs) == 0 {
		return
	}
	spacing := HatchSpacing(cfg.Width)
	face := labelFace(LabelSize(cfg.Width, cfg.Height) * c.Scale)
	defer face.Close()

	for _, z := range zs {
		c.FillPolygons(z.Polygons, withAlpha(pal.FrameLine, ZoneTintAlpha))
		c.StrokeSegments(Hatch(z.Polygons, spacing), ZoneHatchWidth, withAlpha(pal.FrameLine, ZoneHatchAlpha))

		border, width := withAlpha(pal.FrameLine, BorderAlpha), BorderWidth
		if z.Highlighted {
			border, width = withAlpha(pal.Accent, HighlightAlpha), HighlightWidth
		}
		paths := make([][]geom.Point, len(z.Polygons))
		for i, p := range z.Polygons {
			paths[i] = p
		}
		c.StrokePaths(paths, true, width, border)

		c.drawCentered(face, z.Label, z.Centroid, withAlpha(pal.TextSecondary, ZoneLabelAlpha))
	}
}

// Hatch returns 45 degree lines across the bounding box of polys, spaced by
// spacing and clipped to each (convex) polygon.
func Hatch(polys []geom.Polygon, spacing float64) [][2]geom.Point {
	box, ok := geom.Bounds(polys...)
	if !ok || spacing <= 0 {
		return nil
	}
	w, h := box.MaxX-box.MinX, box.MaxY-box.MinY

	var segs [][2]geom.Point
	for d := -h; d < w+h; d += spacing {
		p0 := geom.Pt(box.MinX+d, box.MaxY)
		p1 := geom.Pt(box.MinX+d+h, box.MinY)
		for _, poly := range polys {
			if a, b, ok := geom.ClipSegment(p0, p1, poly); ok {
				segs = append(segs, [2]geom.Point{a, b})
			}
		}
	}
	return segs
}
