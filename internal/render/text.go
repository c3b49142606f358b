package render

import (
	"image"
	"image/color"
	"log/slog"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/talgya/topowall/internal/geom"
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
)

// labelFace returns a Go Regular face at size logical pixels, or the basic
// 7x13 bitmap face when the outline font is unavailable.
func labelFace(size float64) font.Face {
	labelFontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			slog.Warn("label font unavailable, using basic face", "error", err)
			return
		}
		labelFont = f
	})
	if labelFont == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(labelFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		slog.Warn("label face failed, using basic face", "size", size, "error", err)
		return basicfont.Face7x13
	}
	return face
}

// drawCentered draws s centred horizontally and vertically on p (logical).
func (c *Canvas) drawCentered(face font.Face, s string, p geom.Point, col color.NRGBA) {
	m := face.Metrics()
	adv := font.MeasureString(face, s)
	x := fixed.Int26_6(p.X()*c.Scale*64) - adv/2
	y := fixed.Int26_6(p.Y()*c.Scale*64) + (m.Ascent-m.Descent)/2
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(s)
}
