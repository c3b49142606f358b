// Package contour extracts isolines from a heightmap with marching squares.
//
// Thresholds exclude the extremes: for n levels over [min, max] the i-th
// threshold is min + (max-min)*(i+1)/(n+1). The grid is treated as if padded by
// one ring of -Inf cells, so every traced ring is closed, running along the
// border where high ground touches the edge.
package contour

import (
	"math"

	"github.com/talgya/topowall/internal/geom"
	"github.com/talgya/topowall/internal/terrain"
)

// Ring is a closed path in grid coordinates; the last point repeats the first.
type Ring []geom.Point

// Polygon is a list of rings. Rings are not classified into outer
// boundaries and holes, so each polygon carries exactly one ring.
type Polygon []Ring

// Contour is every isoline at one threshold.
type Contour struct {
	Value    float64   `json:"value"`
	Polygons []Polygon `json:"coordinates"`
}

// Thresholds returns levels evenly spaced strictly inside the heightmap range.
// A flat heightmap or levels < 1 yields none.
func Thresholds(hm *terrain.Heightmap, levels int) []float64 {
	if levels < 1 || len(hm.Values) == 0 {
		return nil
	}
	lo, hi := hm.MinMax()
	if !(hi > lo) {
		return nil
	}
	out := make([]float64, levels)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i+1)/float64(levels+1)
	}
	return out
}

// Extract traces all isolines for each threshold, ascending by value.
func Extract(hm *terrain.Heightmap, levels int) []Contour {
	thresholds := Thresholds(hm, levels)
	out := make([]Contour, len(thresholds))
	for i, t := range thresholds {
		out[i] = Contour{Value: t, Polygons: Trace(hm, t)}
	}
	return out
}

// Values returns the threshold of each contour, in order.
func Values(cs []Contour) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}

// edge identifies one lattice edge of the padded grid.
// Horizontal edges join (x,y)-(x+1,y); vertical edges join (x,y)-(x,y+1).
type edge struct {
	x, y     int
	vertical bool
}

type segment struct {
	a, b edge
}

type tracer struct {
	hm *terrain.Heightmap
	t  float64
}

func (tr *tracer) value(x, y int) float64 {
	if x < 0 || y < 0 || x >= tr.hm.Width || y >= tr.hm.Height {
		return math.Inf(-1)
	}
	return tr.hm.At(x, y)
}

// point places the crossing on edge e by linear interpolation. Against the
// padding the crossing sits on the real grid vertex.
func (tr *tracer) point(e edge) geom.Point {
	x0, y0 := e.x, e.y
	x1, y1 := e.x+1, e.y
	if e.vertical {
		x1, y1 = e.x, e.y+1
	}
	v0, v1 := tr.value(x0, y0), tr.value(x1, y1)
	switch {
	case math.IsInf(v0, -1):
		return geom.Pt(float64(x1), float64(y1))
	case math.IsInf(v1, -1):
		return geom.Pt(float64(x0), float64(y0))
	}
	f := (tr.t - v0) / (v1 - v0)
	return geom.Pt(float64(x0)+f*float64(x1-x0), float64(y0)+f*float64(y1-y0))
}

// Trace returns the closed rings at threshold t.
func Trace(hm *terrain.Heightmap, t float64) []Polygon {
	tr := &tracer{hm: hm, t: t}

	var segs []segment
	for y := -1; y < hm.Height; y++ {
		for x := -1; x < hm.Width; x++ {
			segs = tr.cell(segs, x, y)
		}
	}
	if len(segs) == 0 {
		return nil
	}
	return tr.stitch(segs)
}

// cell appends the segments for the square whose top-left corner is (x, y).
func (tr *tracer) cell(segs []segment, x, y int) []segment {
	tl := tr.value(x, y)
	trv := tr.value(x+1, y)
	br := tr.value(x+1, y+1)
	bl := tr.value(x, y+1)

	idx := 0
	if tl >= tr.t {
		idx |= 8
	}
	if trv >= tr.t {
		idx |= 4
	}
	if br >= tr.t {
		idx |= 2
	}
	if bl >= tr.t {
		idx |= 1
	}
	if idx == 0 || idx == 15 {
		return segs
	}

	top := edge{x, y, false}
	bottom := edge{x, y + 1, false}
	left := edge{x, y, true}
	right := edge{x + 1, y, true}

	switch idx {
	case 1, 14:
		return append(segs, segment{left, bottom})
	case 2, 13:
		return append(segs, segment{bottom, right})
	case 3, 12:
		return append(segs, segment{left, right})
	case 4, 11:
		return append(segs, segment{top, right})
	case 6, 9:
		return append(segs, segment{top, bottom})
	case 7, 8:
		return append(segs, segment{top, left})
	case 5, 10:
		// Saddle: the corner mean decides whether the high corners connect.
		centerHigh := (tl+trv+br+bl)/4 >= tr.t
		if (idx == 5) == centerHigh {
			// High diagonal joined: cut off the two low corners (tl, br for 5).
			return append(segs, segment{top, left}, segment{bottom, right})
		}
		return append(segs, segment{top, right}, segment{left, bottom})
	}
	return segs
}

// stitch joins segments that share an edge crossing into closed rings.
// Every crossing belongs to exactly two segments.
func (tr *tracer) stitch(segs []segment) []Polygon {
	byEdge := make(map[edge][]int, len(segs)*2)
	for i, s := range segs {
		byEdge[s.a] = append(byEdge[s.a], i)
		byEdge[s.b] = append(byEdge[s.b], i)
	}

	used := make([]bool, len(segs))
	var polys []Polygon
	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		first := segs[start].a
		ring := Ring{tr.point(first)}
		cur := segs[start].b
		for cur != first {
			ring = append(ring, tr.point(cur))
			next := -1
			for _, si := range byEdge[cur] {
				if !used[si] {
					next = si
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
			if segs[next].a == cur {
				cur = segs[next].b
			} else {
				cur = segs[next].a
			}
		}
		ring = append(ring, ring[0])
		polys = append(polys, Polygon{ring})
	}
	return polys
}
