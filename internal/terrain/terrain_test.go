package terrain

import (
	"math"
	"testing"
)

func scenarioParams() Params {
	return Params{
		GridWidth:   100,
		GridHeight:  50,
		Seed:        "abc",
		Scale:       0.006,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Basis:       BasisSimplex,
	}
}

func TestSynthesizeDimensions(t *testing.T) {
	hm := Synthesize(scenarioParams())
	if hm.Width != 100 || hm.Height != 50 {
		t.Fatalf("dimensions = %dx%d, want 100x50", hm.Width, hm.Height)
	}
	if len(hm.Values) != 100*50 {
		t.Fatalf("len(Values) = %d", len(hm.Values))
	}
	lo, hi := hm.MinMax()
	if !(lo < hi) {
		t.Fatalf("degenerate range [%v, %v]", lo, hi)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	for _, basis := range []Basis{BasisSimplex, BasisPerlin} {
		p := scenarioParams()
		p.Basis = basis
		a := Synthesize(p)
		b := Synthesize(p)
		for i := range a.Values {
			if a.Values[i] != b.Values[i] {
				t.Fatalf("%s: cell %d differs: %v vs %v", basis, i, a.Values[i], b.Values[i])
			}
		}
	}
}

func TestSynthesizeIndependentOfWorkers(t *testing.T) {
	p := scenarioParams()
	p.Workers = 1
	serial := Synthesize(p)
	p.Workers = 7
	parallel := Synthesize(p)
	for i := range serial.Values {
		if serial.Values[i] != parallel.Values[i] {
			t.Fatalf("cell %d differs between 1 and 7 workers", i)
		}
	}
}

func TestSeedChangesTerrain(t *testing.T) {
	a := Synthesize(scenarioParams())
	p := scenarioParams()
	p.Seed = "abd"
	b := Synthesize(p)
	same := 0
	for i := range a.Values {
		if a.Values[i] == b.Values[i] {
			same++
		}
	}
	if same == len(a.Values) {
		t.Fatal("different seeds produced identical heightmaps")
	}
}

func TestSingleOctaveMatchesField(t *testing.T) {
	p := scenarioParams()
	p.Octaves = 1
	p.Scale = 0.05
	hm := Synthesize(p)

	// With one octave the cell value is the raw field sample.
	field := NewField(p.Basis, newTerrainStream(p.Seed))
	if got, want := hm.At(13, 7), field.Eval2(13*0.05, 7*0.05); got != want {
		t.Fatalf("At(13,7) = %v, want %v", got, want)
	}
}

func TestSmoothness(t *testing.T) {
	p := scenarioParams()
	p.Octaves = 1
	hm := Synthesize(p)
	// Adjacent samples 0.006 apart in noise space stay close together.
	for y := 0; y < hm.Height; y++ {
		for x := 1; x < hm.Width; x++ {
			if d := math.Abs(hm.At(x, y) - hm.At(x-1, y)); d > 0.1 {
				t.Fatalf("jump of %v between (%d,%d) and (%d,%d)", d, x-1, y, x, y)
			}
		}
	}
}

func TestGridSize(t *testing.T) {
	cases := []struct {
		w, h   int
		gw, gh int
	}{
		{1920, 1080, 250, 141},
		{1080, 1920, 141, 250},
		{1000, 1000, 250, 250},
		{100, 100000, 2, 250},
	}
	for _, tc := range cases {
		gw, gh := GridSize(tc.w, tc.h)
		if gw != tc.gw || gh != tc.gh {
			t.Errorf("GridSize(%d,%d) = %d,%d want %d,%d", tc.w, tc.h, gw, gh, tc.gw, tc.gh)
		}
	}
}

func TestParseBasis(t *testing.T) {
	if ParseBasis("perlin") != BasisPerlin {
		t.Error("perlin not parsed")
	}
	if ParseBasis("") != BasisSimplex || ParseBasis("worley") != BasisSimplex {
		t.Error("unknown basis should fall back to simplex")
	}
}
