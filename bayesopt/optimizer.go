package bayesopt

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/optimize"
)

// DefaultRestarts is the default number of independent local searches over
// the acquisition surface per round.
const DefaultRestarts = 20

// LocalOptimum is a raw result of one local search over the acquisition
// surface, in unit-scaled coordinates. The convergence fields are used to
// discard failed searches and are stripped before the pool enters candidate
// selection.
type LocalOptimum struct {
	Scaled    []float64
	Utility   float64
	Converged bool
	FuncEvals int
}

// FindLocalOptima runs independent Nelder-Mead searches of the acquisition
// surface from uniformly random starts in the unit cube. The utility is
// maximized; coordinates are clamped into the cube during evaluation so the
// simplex cannot wander out of bounds.
func FindLocalOptima(rng *rand.Rand, utility UtilityFunc, dim, restarts int) ([]LocalOptimum, error) {
	if dim < 1 {
		return nil, fmt.Errorf("optimizer: dimension must be at least 1")
	}
	if restarts < 1 {
		restarts = DefaultRestarts
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -utility(clampUnit(x))
		},
	}

	optima := make([]LocalOptimum, 0, restarts)
	for r := 0; r < restarts; r++ {
		start := make([]float64, dim)
		for i := range start {
			start[i] = rng.Float64()
		}

		result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
		if result == nil {
			// A search that produced nothing at all is dropped; the
			// remaining restarts still populate the pool.
			continue
		}

		scaled := clampUnit(result.X)
		optima = append(optima, LocalOptimum{
			Scaled:    scaled,
			Utility:   utility(scaled),
			Converged: err == nil && result.Status != optimize.Failure,
			FuncEvals: result.Stats.FuncEvaluations,
		})
	}

	if len(optima) == 0 {
		return nil, fmt.Errorf("optimizer: all %d local searches failed", restarts)
	}
	return optima, nil
}

// PoolFromOptima converts local optima to an unscaled candidate pool,
// stripping the convergence metadata, which is irrelevant downstream.
func PoolFromOptima(optima []LocalOptimum, bounds Bounds) []Candidate {
	pool := make([]Candidate, len(optima))
	for i, o := range optima {
		pool[i] = Candidate{
			Params:    bounds.UnscaleFromUnit(o.Scaled),
			Utility:   o.Utility,
			IsOptimum: true,
		}
	}
	return pool
}

// clampUnit constrains a point to the unit cube, returning a copy.
func clampUnit(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < 0:
			out[i] = 0
		case v > 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}
