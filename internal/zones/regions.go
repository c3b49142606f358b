package zones

import (
	"math"
	"sort"

	"github.com/talgya/topowall/internal/geom"
)

// CenterClearance is the fraction of min(width, height) around the canvas
// centre that zone centroids must stay outside of.
const CenterClearance = 0.15

// Region is a connected group of merged Voronoi cells.
type Region struct {
	Cells    []int      `json:"cells"`
	Centroid geom.Point `json:"centroid"`
	Area     float64    `json:"area"`
}

// Groups partitions the valid cells by union-find root, in order of first
// appearance. Singleton groups are included.
func Groups(uf *UnionFind, tess *geom.Tessellation) [][]int {
	index := make(map[int]int)
	var groups [][]int
	for i := range tess.Cells {
		if !tess.Valid(i) {
			continue
		}
		root := uf.Find(i)
		gi, ok := index[root]
		if !ok {
			gi = len(groups)
			index[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}
	return groups
}

// BuildRegions turns groups of two or more cells into regions with an
// area-weighted centroid of their sites, sorted by descending area.
func BuildRegions(groups [][]int, tess *geom.Tessellation) []Region {
	var regions []Region
	for _, cells := range groups {
		if len(cells) < 2 {
			continue
		}
		var total, cx, cy float64
		for _, c := range cells {
			a := geom.Area(tess.Cells[c])
			total += a
			cx += tess.Points[c].X() * a
			cy += tess.Points[c].Y() * a
		}
		if total > 0 {
			cx /= total
			cy /= total
		}
		regions = append(regions, Region{Cells: cells, Centroid: geom.Pt(cx, cy), Area: total})
	}
	sort.SliceStable(regions, func(a, b int) bool {
		return regions[a].Area > regions[b].Area
	})
	return regions
}

// AwayFromCenter keeps regions whose centroid lies strictly farther than
// CenterClearance*min(w,h) from the centre of bounds.
func AwayFromCenter(regions []Region, bounds geom.Rect) []Region {
	center := bounds.Center()
	w, h := bounds.MaxX-bounds.MinX, bounds.MaxY-bounds.MinY
	limit := math.Min(w, h) * CenterClearance
	var out []Region
	for _, r := range regions {
		if geom.Dist(r.Centroid, center) > limit {
			out = append(out, r)
		}
	}
	return out
}
