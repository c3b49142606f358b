package zones

import (
	"math"
	"sort"

	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/geom"
)

// Band and merge constants.
const (
	MinBands        = 5
	MaxBands        = 8
	SteepPercentile = 0.75
	NoBand          = -1
)

// BandEdges picks every step-th contour threshold as a band boundary, with
// step = max(1, len(thresholds)/bands).
func BandEdges(thresholds []float64, bands int) []float64 {
	if bands <= 0 {
		return nil
	}
	step := len(thresholds) / bands
	if step < 1 {
		step = 1
	}
	var edges []float64
	for i := step; i < len(thresholds); i += step {
		edges = append(edges, thresholds[i])
	}
	return edges
}

// Band returns the index of the first edge strictly above h, or len(edges).
func Band(h float64, edges []float64) int {
	for i, e := range edges {
		if h < e {
			return i
		}
	}
	return len(edges)
}

// cellSample is a site's heightmap cell and the height sampled there.
type cellSample struct {
	gx, gy int
	height float64
}

func steepness(a, b cellSample) float64 {
	dx, dy := float64(b.gx-a.gx), float64(b.gy-a.gy)
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		return 0
	}
	return math.Abs(b.height-a.height) / d
}

// SteepThreshold returns the value at index floor(n*SteepPercentile) of the
// sorted slopes, or +Inf when there are none. The input is sorted in place.
func SteepThreshold(slopes []float64) float64 {
	if len(slopes) == 0 {
		return math.Inf(1)
	}
	sort.Float64s(slopes)
	return slopes[int(math.Floor(float64(len(slopes))*SteepPercentile))]
}

// merger holds per-cell band and sample data for one gradient merge.
type merger struct {
	tess    *geom.Tessellation
	samples []cellSample
	bands   []int
}

// assignBands draws the band count and assigns each valid cell its band.
func assignBands(tess *geom.Tessellation, samples []cellSample, thresholds []float64, rng *entropy.Stream) (*merger, []float64) {
	edges := BandEdges(thresholds, rng.IntRange(MinBands, MaxBands))
	m := &merger{tess: tess, samples: samples, bands: make([]int, len(samples))}
	for i, s := range samples {
		if !tess.Valid(i) {
			m.bands[i] = NoBand
			continue
		}
		m.bands[i] = Band(s.height, edges)
	}
	return m, edges
}

// validPairs calls fn for every Delaunay edge i<j whose cells are both valid.
func (m *merger) validPairs(fn func(i, j int)) {
	for i := range m.samples {
		if !m.tess.Valid(i) {
			continue
		}
		for _, j := range m.tess.Neighbors[i] {
			if j <= i || !m.tess.Valid(j) {
				continue
			}
			fn(i, j)
		}
	}
}

// sameBandSlopes returns the steepness of every valid same-band neighbour pair.
func (m *merger) sameBandSlopes() []float64 {
	var slopes []float64
	m.validPairs(func(i, j int) {
		if m.bands[i] == m.bands[j] {
			slopes = append(slopes, steepness(m.samples[i], m.samples[j]))
		}
	})
	return slopes
}

// merge unions same-band neighbours whose slope is at or below the
// percentile of same-band slopes and returns the forest with the threshold used.
func (m *merger) merge() (*UnionFind, float64) {
	limit := SteepThreshold(m.sameBandSlopes())

	uf := NewUnionFind(len(m.samples))
	m.validPairs(func(i, j int) {
		if m.bands[i] != m.bands[j] {
			return
		}
		if steepness(m.samples[i], m.samples[j]) <= limit {
			uf.Union(i, j)
		}
	})
	return uf, limit
}
