package terrain

import (
	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/topowall/internal/entropy"
)

// Basis selects the coherent noise function sampled by each octave.
type Basis string

const (
	BasisSimplex Basis = "simplex" // OpenSimplex gradient noise (default)
	BasisPerlin  Basis = "perlin"  // Classic Perlin gradient noise
)

// ParseBasis maps a config string to a Basis; unknown values fall back to simplex.
func ParseBasis(s string) Basis {
	switch Basis(s) {
	case BasisPerlin:
		return BasisPerlin
	default:
		return BasisSimplex
	}
}

// Field evaluates continuous 2D coherent noise.
type Field interface {
	Eval2(x, y float64) float64
}

type perlinField struct {
	p *perlin.Perlin
}

func (f perlinField) Eval2(x, y float64) float64 {
	return f.p.Noise2D(x, y)
}

// NewField builds the noise field for a basis. The lattice seed is drawn from
// rng, so the same stream always yields the same gradient assignment.
func NewField(basis Basis, rng *entropy.Stream) Field {
	seed := rng.Int63()
	switch basis {
	case BasisPerlin:
		// One octave per sample; octave summation happens in Synthesize.
		return perlinField{p: perlin.NewPerlin(2, 2, 1, seed)}
	default:
		return opensimplex.New(seed)
	}
}
