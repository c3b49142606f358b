// Package zones carves terrain-aware territories out of a heightmap.
//
// Voronoi sites are seeded near local extrema and at random, cells are grouped
// into elevation bands, gentle same-band neighbours are merged with a
// union-find, and a handful of large, mutually non-adjacent regions away from
// the canvas centre become zones.
package zones

import (
	"log/slog"

	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/geom"
	"github.com/talgya/topowall/internal/terrain"
)

// RNGLayer names the random stream the zone pass draws from.
const RNGLayer = "zones"

// Input is everything one zone pass depends on besides its random stream.
type Input struct {
	Heightmap    *terrain.Heightmap
	Thresholds   []float64
	CanvasWidth  float64
	CanvasHeight float64
	// Labels is the name pool; DefaultLabels when empty.
	Labels []string
}

// Zone is a selected region ready to draw.
type Zone struct {
	Cells       []int          `json:"cells"`
	Polygons    []geom.Polygon `json:"polygons"`
	Centroid    geom.Point     `json:"centroid"`
	Area        float64        `json:"area"`
	Highlighted bool           `json:"highlighted"`
	Label       string         `json:"label"`
}

// Result carries the zones along with the intermediate structures that
// produced them.
type Result struct {
	Sites        []geom.Point       `json:"sites"`
	Tessellation *geom.Tessellation `json:"-"`
	Bands        []int              `json:"bands"`
	BandEdges    []float64          `json:"bandEdges"`
	SteepLimit   float64            `json:"-"`
	// Groups holds every merged group of valid cells, singletons included.
	Groups     [][]int  `json:"-"`
	Regions    []Region `json:"regions"`
	Candidates []Region `json:"-"`
	Target     int      `json:"target"`
	Zones      []Zone   `json:"zones"`
}

// Synthesize runs one zone pass. Random values are drawn from rng in a fixed
// order, so equal inputs and equal streams give equal results.
func Synthesize(in Input, rng *entropy.Stream) *Result {
	hm := in.Heightmap
	bounds := geom.Rect{MaxX: in.CanvasWidth, MaxY: in.CanvasHeight}

	maxima, minima := FindExtrema(hm)
	extrema := append(append([]Extremum(nil), maxima...), minima...)

	sites := PlaceSites(extrema, hm.Width, hm.Height, in.CanvasWidth, in.CanvasHeight, rng)
	tess := geom.Tessellate(sites, bounds)

	samples := make([]cellSample, len(sites))
	for i, p := range sites {
		gx, gy := GridCoord(p, hm.Width, hm.Height, in.CanvasWidth, in.CanvasHeight)
		samples[i] = cellSample{gx: gx, gy: gy, height: hm.At(gx, gy)}
	}

	m, edges := assignBands(tess, samples, in.Thresholds, rng)
	uf, limit := m.merge()

	groups := Groups(uf, tess)
	regions := BuildRegions(groups, tess)
	candidates := AwayFromCenter(regions, bounds)

	target := rng.IntRange(MinZones, MaxZones)
	selected := Select(candidates, target, tess.Neighbors)

	pool := in.Labels
	if len(pool) == 0 {
		pool = DefaultLabels
	}
	lit := highlights(len(selected), rng)
	names := shuffleLabels(pool, len(selected), rng)

	zones := make([]Zone, len(selected))
	for zi, r := range selected {
		z := Zone{
			Cells:       r.Cells,
			Centroid:    r.Centroid,
			Area:        r.Area,
			Highlighted: lit[zi],
			Label:       names[zi%len(names)],
		}
		for _, c := range r.Cells {
			if cell := tess.Cells[c]; cell != nil {
				z.Polygons = append(z.Polygons, cell)
			}
		}
		zones[zi] = z
	}

	slog.Debug("zones synthesized",
		"extrema", len(extrema),
		"sites", len(sites),
		"regions", len(regions),
		"candidates", len(candidates),
		"target", target,
		"zones", len(zones),
	)

	return &Result{
		Sites:        sites,
		Tessellation: tess,
		Bands:        m.bands,
		BandEdges:    edges,
		SteepLimit:   limit,
		Groups:       groups,
		Regions:      regions,
		Candidates:   candidates,
		Target:       target,
		Zones:        zones,
	}
}
