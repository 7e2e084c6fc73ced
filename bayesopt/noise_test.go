package bayesopt

import (
	"math/rand"
	"testing"
)

func TestPerturbStaysInBounds(t *testing.T) {
	bounds := Bounds{
		{Name: "x", Min: 0, Max: 10},
		{Name: "n", Min: 0, Max: 10, Kind: Integer},
	}
	rng := rand.New(rand.NewSource(1))
	row := []float64{9.8, 10} // near the upper corner so clamping gets exercised

	for i := 0; i < 200; i++ {
		got, err := perturb(rng, row, bounds, 0.25)
		if err != nil {
			t.Fatalf("perturb: %v", err)
		}
		for d, v := range got {
			if v < bounds[d].Min || v > bounds[d].Max {
				t.Fatalf("draw %d dimension %d out of bounds: %v", i, d, v)
			}
		}
		if got[1] != float64(int(got[1])) {
			t.Fatalf("integer dimension drew fractional value %v", got[1])
		}
	}
}

func TestPerturbWindowWidth(t *testing.T) {
	bounds := Bounds{{Name: "x", Min: 0, Max: 100}}
	rng := rand.New(rand.NewSource(2))
	center := 50.0

	// noiseAdd 0.1 over span 100 means a window of 10 centered on the value.
	for i := 0; i < 500; i++ {
		got, err := perturb(rng, []float64{center}, bounds, 0.1)
		if err != nil {
			t.Fatalf("perturb: %v", err)
		}
		if got[0] < center-5 || got[0] > center+5 {
			t.Fatalf("draw %v outside the +-5 window around %v", got[0], center)
		}
	}
}

func TestPerturbDegenerateBounds(t *testing.T) {
	bounds := Bounds{{Name: "x", Min: 5, Max: 5}}
	rng := rand.New(rand.NewSource(3))
	if _, err := perturb(rng, []float64{5}, bounds, 0.25); err == nil {
		t.Fatal("zero-width bound must be an error, not a silent no-op draw")
	}
}

func TestPerturbDimensionMismatch(t *testing.T) {
	bounds := Bounds{{Name: "x", Min: 0, Max: 1}}
	rng := rand.New(rand.NewSource(4))
	if _, err := perturb(rng, []float64{0.5, 0.5}, bounds, 0.25); err == nil {
		t.Fatal("row/bounds dimension mismatch must be an error")
	}
}
