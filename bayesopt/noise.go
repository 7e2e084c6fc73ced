package bayesopt

import (
	"fmt"
	"math/rand"
)

// DefaultNoiseAdd is the default perturbation magnitude as a fraction of each
// dimension's bound span.
const DefaultNoiseAdd = 0.25

// perturb draws a bounded random replacement for a coordinate row. Each
// dimension is resampled uniformly from a window of width span*noiseAdd
// centered on the current value, clamped into bounds, with integer
// dimensions rounded to their grid. A zero-width bound cannot produce any
// replacement and is reported as an error; the caller must distinguish that
// failure from a valid draw that merely happens to still be a duplicate.
func perturb(rng *rand.Rand, row []float64, bounds Bounds, noiseAdd float64) ([]float64, error) {
	if len(row) != bounds.Dim() {
		return nil, fmt.Errorf("perturb: row has %d dimensions, bounds have %d", len(row), bounds.Dim())
	}
	if noiseAdd <= 0 {
		noiseAdd = DefaultNoiseAdd
	}

	out := make([]float64, len(row))
	for i, p := range bounds {
		span := p.Span()
		if span <= 0 {
			return nil, fmt.Errorf("perturb: parameter %q has degenerate bounds [%g, %g]", p.Name, p.Min, p.Max)
		}
		window := span * noiseAdd
		v := row[i] + (rng.Float64()-0.5)*window
		out[i] = bounds.snap(i, v)
	}
	return out, nil
}
