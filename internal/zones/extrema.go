package zones

import (
	"math"

	"github.com/talgya/topowall/internal/entropy"
	"github.com/talgya/topowall/internal/terrain"
)

// Extremum is a local peak or pit in grid coordinates.
type Extremum struct {
	X, Y  int
	Value float64
}

// FindExtrema scans interior cells (border excluded) against their 8 neighbours.
// A cell is a maximum when every neighbour is strictly lower and a minimum
// when every neighbour is strictly higher, so plateau cells are neither.
func FindExtrema(hm *terrain.Heightmap) (maxima, minima []Extremum) {
	for y := 1; y < hm.Height-1; y++ {
		for x := 1; x < hm.Width-1; x++ {
			v := hm.At(x, y)
			isMax, isMin := true, true
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n := hm.At(x+dx, y+dy)
					if n >= v {
						isMax = false
					}
					if n <= v {
						isMin = false
					}
				}
			}
			if isMax {
				maxima = append(maxima, Extremum{X: x, Y: y, Value: v})
			}
			if isMin {
				minima = append(minima, Extremum{X: x, Y: y, Value: v})
			}
		}
	}
	return maxima, minima
}

// Subsample picks target extrema spread as far apart as possible: the list is
// shuffled, the first element seeds the selection, then the candidate farthest
// from everything selected so far is added until target is reached.
// Lists no longer than target are returned as-is without consuming rng.
func Subsample(ext []Extremum, target int, rng *entropy.Stream) []Extremum {
	if len(ext) <= target {
		return ext
	}
	shuffled := append([]Extremum(nil), ext...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if target <= 0 {
		return nil
	}

	selected := []Extremum{shuffled[0]}
	used := make([]bool, len(shuffled))
	used[0] = true
	// nearest[i] tracks the squared distance from i to its closest selected extremum.
	nearest := make([]float64, len(shuffled))
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}

	for len(selected) < target {
		last := selected[len(selected)-1]
		best, bestDist := -1, -1.0
		for i, e := range shuffled {
			if used[i] {
				continue
			}
			dx, dy := float64(e.X-last.X), float64(e.Y-last.Y)
			nearest[i] = math.Min(nearest[i], dx*dx+dy*dy)
			if nearest[i] > bestDist {
				best, bestDist = i, nearest[i]
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		selected = append(selected, shuffled[best])
	}
	return selected
}
