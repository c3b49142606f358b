package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/talgya/topowall/internal/geom"
)

// Canvas rasterizes paths given in logical coordinates onto an RGBA image
// that is Scale times larger.
type Canvas struct {
	Scale float64

	img *image.RGBA
	ras *vector.Rasterizer
}

// NewCanvas allocates a canvas for a logical size of width x height.
func NewCanvas(width, height int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return &Canvas{
		Scale: scale,
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		ras:   vector.NewRasterizer(w, h),
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear paints the whole canvas with col.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillPolygons fills each polygon with col. Overlaps do not double the alpha.
func (c *Canvas) FillPolygons(polys []geom.Polygon, col color.NRGBA) {
	c.begin()
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		c.moveTo(poly[0])
		for _, p := range poly[1:] {
			c.lineTo(p)
		}
		c.ras.ClosePath()
	}
	c.flush(col)
}

// StrokePaths strokes polylines of the given logical width. Closed paths get
// their last edge back to the first point.
func (c *Canvas) StrokePaths(paths [][]geom.Point, closed bool, width float64, col color.NRGBA) {
	c.begin()
	for _, path := range paths {
		for i := 1; i < len(path); i++ {
			c.segment(path[i-1], path[i], width)
		}
		if closed && len(path) > 2 {
			c.segment(path[len(path)-1], path[0], width)
		}
	}
	c.flush(col)
}

// StrokeSegments strokes independent segments.
func (c *Canvas) StrokeSegments(segs [][2]geom.Point, width float64, col color.NRGBA) {
	c.begin()
	for _, s := range segs {
		c.segment(s[0], s[1], width)
	}
	c.flush(col)
}

func (c *Canvas) begin() {
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
}

func (c *Canvas) flush(col color.NRGBA) {
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *Canvas) moveTo(p geom.Point) {
	c.ras.MoveTo(float32(p.X()*c.Scale), float32(p.Y()*c.Scale))
}

func (c *Canvas) lineTo(p geom.Point) {
	c.ras.LineTo(float32(p.X()*c.Scale), float32(p.Y()*c.Scale))
}

// segment adds a square-capped quad around p-q. Every quad winds the same way,
// so overlapping strokes saturate instead of cancelling.
func (c *Canvas) segment(p, q geom.Point, width float64) {
	d := q.Sub(p)
	length := d.Len()
	if length < 1e-9 {
		return
	}
	half := width / 2
	dir := d.Mul(half / length)
	n := geom.Pt(-dir.Y(), dir.X())

	c.moveTo(p.Add(n).Sub(dir))
	c.lineTo(q.Add(n).Add(dir))
	c.lineTo(q.Sub(n).Add(dir))
	c.lineTo(p.Sub(n).Sub(dir))
	c.ras.ClosePath()
}
