// Package terrain synthesizes fractal heightmaps from layered coherent noise.
package terrain

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/talgya/topowall/internal/entropy"
)

// GridCells is the cell count along the longer heightmap axis.
const GridCells = 250

// RNGLayer names the entropy layer that seeds the noise lattice.
const RNGLayer = "terrain"

// Params holds heightmap synthesis parameters.
type Params struct {
	GridWidth   int
	GridHeight  int
	Seed        string
	Scale       float64 // Base frequency; smaller = larger landmasses
	Octaves     int
	Persistence float64 // Amplitude decay per octave, in (0,1)
	Lacunarity  float64 // Frequency growth per octave, > 1
	Basis       Basis
	Workers     int // Parallel row workers; <= 0 uses GOMAXPROCS
}

// Heightmap is an immutable row-major grid of unnormalized elevations.
type Heightmap struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Values []float64 `json:"values"`
}

// At returns the elevation at grid cell (x, y).
func (h *Heightmap) At(x, y int) float64 {
	return h.Values[y*h.Width+x]
}

// MinMax returns the smallest and largest elevation.
func (h *Heightmap) MinMax() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// String returns a summary of the heightmap.
func (h *Heightmap) String() string {
	lo, hi := h.MinMax()
	return fmt.Sprintf("Heightmap(%dx%d, range=[%.4f, %.4f])", h.Width, h.Height, lo, hi)
}

// GridSize keeps the canvas aspect ratio with GridCells on the longer axis.
func GridSize(width, height int) (gw, gh int) {
	aspect := float64(width) / float64(height)
	if aspect >= 1 {
		gw = GridCells
		gh = int(math.Round(GridCells / aspect))
	} else {
		gw = int(math.Round(GridCells * aspect))
		gh = GridCells
	}
	return max(gw, 2), max(gh, 2)
}

// Synthesize evaluates the fractal sum for every grid cell:
//
//	v(x,y) = sum_{i<octaves} persistence^i * noise(x*scale*lacunarity^i, y*scale*lacunarity^i)
//
// Cells are independent, so rows are spread over workers; the result does not
// depend on the worker count.
func Synthesize(p Params) *Heightmap {
	field := NewField(p.Basis, newTerrainStream(p.Seed))

	hm := &Heightmap{
		Width:  p.GridWidth,
		Height: p.GridHeight,
		Values: make([]float64, p.GridWidth*p.GridHeight),
	}

	// Per-octave frequency and amplitude, computed once.
	freqs := make([]float64, p.Octaves)
	amps := make([]float64, p.Octaves)
	for i := range p.Octaves {
		freqs[i] = p.Scale * math.Pow(p.Lacunarity, float64(i))
		amps[i] = math.Pow(p.Persistence, float64(i))
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(p.GridHeight, 1))

	rows := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				row := hm.Values[y*p.GridWidth : (y+1)*p.GridWidth]
				for x := range row {
					row[x] = octaveNoise(field, float64(x), float64(y), freqs, amps)
				}
			}
		}()
	}
	for y := 0; y < p.GridHeight; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return hm
}

// octaveNoise layers the field at increasing frequency and decaying amplitude.
func octaveNoise(field Field, x, y float64, freqs, amps []float64) float64 {
	total := 0.0
	for i, f := range freqs {
		total += field.Eval2(x*f, y*f) * amps[i]
	}
	return total
}

func newTerrainStream(seed string) *entropy.Stream {
	return entropy.ForLayer(seed, RNGLayer)
}
