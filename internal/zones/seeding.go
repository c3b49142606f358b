package zones

import (
	"math"

	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/geom"
)

// Seeding constants.
const (
	MinSites        = 25
	MaxSites        = 40
	TerrainFraction = 0.6
	JitterFraction  = 0.015
	EdgeMargin      = 0.02
)

// PlaceSites builds the Voronoi site list: a farthest-point subsample of the
// extrema mapped to canvas space and jittered, topped up with uniform random
// sites. Every site lies within the inner 96% of each canvas axis.
func PlaceSites(extrema []Extremum, gridW, gridH int, canvasW, canvasH float64, rng *entropy.Stream) []geom.Point {
	total := rng.IntRange(MinSites, MaxSites)
	fromTerrain := int(math.Floor(float64(total)*TerrainFraction + 0.5))
	if fromTerrain > len(extrema) {
		fromTerrain = len(extrema)
	}
	picked := Subsample(extrema, fromTerrain, rng)

	scaleX := canvasW / float64(gridW)
	scaleY := canvasH / float64(gridH)
	jitter := math.Min(canvasW, canvasH) * JitterFraction

	sites := make([]geom.Point, 0, total)
	for _, e := range picked {
		x := float64(e.X)*scaleX + rng.Range(-jitter, jitter)
		y := float64(e.Y)*scaleY + rng.Range(-jitter, jitter)
		sites = append(sites, geom.Pt(
			clampMargin(x, canvasW),
			clampMargin(y, canvasH),
		))
	}
	for len(sites) < total {
		x := rng.Range(canvasW*EdgeMargin, canvasW*(1-EdgeMargin))
		y := rng.Range(canvasH*EdgeMargin, canvasH*(1-EdgeMargin))
		sites = append(sites, geom.Pt(x, y))
	}
	return sites
}

func clampMargin(v, extent float64) float64 {
	return math.Max(extent*EdgeMargin, math.Min(extent*(1-EdgeMargin), v))
}

// GridCoord maps a canvas point to the heightmap cell it falls in.
func GridCoord(p geom.Point, gridW, gridH int, canvasW, canvasH float64) (gx, gy int) {
	gx = int(math.Floor(p.X() * float64(gridW) / canvasW))
	gy = int(math.Floor(p.Y() * float64(gridH) / canvasH))
	return clampInt(gx, 0, gridW-1), clampInt(gy, 0, gridH-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
