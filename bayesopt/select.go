package bayesopt

import (
	"fmt"
	"math/rand"
)

// DefaultMaxTries is the hard ceiling on the two backfill retry loops. It
// guarantees termination for any finite bounds and finite history.
const DefaultMaxTries = 1000

// FailureCode identifies why a selection round gave up.
type FailureCode int

const (
	// FailPerturb means the noise routine could not produce a valid
	// in-bounds point, typically because of a zero-width bound.
	FailPerturb FailureCode = iota + 1
	// FailDuplicatesExhausted means the retry ceiling elapsed with
	// history collisions still present in the selected batch.
	FailDuplicatesExhausted
	// FailBackfillExhausted means the retry ceiling elapsed before the
	// batch reached the requested size.
	FailBackfillExhausted
)

// String returns a short name for the failure code.
func (c FailureCode) String() string {
	switch c {
	case FailPerturb:
		return "perturbation-failed"
	case FailDuplicatesExhausted:
		return "duplicates-exhausted"
	case FailBackfillExhausted:
		return "backfill-exhausted"
	default:
		return fmt.Sprintf("failure(%d)", int(c))
	}
}

// Failure is the diagnostic result of a selection round that gave up. It is
// deliberately not an error: the enclosing optimization loop treats "could
// not find enough unique points this round" as a recoverable, loggable event
// that stops the round but not the process.
type Failure struct {
	Code    FailureCode
	Message string
}

// Result is the tagged outcome of a selection round: either a batch of
// unique candidates or a diagnostic failure, never both and never a partial
// batch. Callers must branch on OK rather than assume success.
type Result struct {
	Batch   []Candidate
	Failure *Failure
}

// OK reports whether the selection produced a batch.
func (r Result) OK() bool { return r.Failure == nil }

// UtilityFunc evaluates the acquisition utility of a point given in
// unit-scaled coordinates. It is invoked only for points synthesized during
// backfill, whose utility is unknown.
type UtilityFunc func(scaled []float64) float64

// SelectConfig tunes a candidate selection round.
type SelectConfig struct {
	// RunNew is the requested batch size.
	RunNew int
	// MinClusterUtility enables clustering when non-nil; see ClusterParams.
	MinClusterUtility *float64
	// ClusterEpsilon is the base clustering radius; zero selects the default.
	ClusterEpsilon float64
	// NoiseAdd is the perturbation magnitude; zero selects the default.
	NoiseAdd float64
	// DuplicateTolerance is the absolute per-dimension slack for the
	// duplicate oracle. The default of zero means exact float equality,
	// matching the documented behavior of the selection step.
	DuplicateTolerance float64
	// MaxTries bounds each backfill loop; zero selects DefaultMaxTries.
	MaxTries int
	// Rand is the randomness source for perturbation. Required.
	Rand *rand.Rand
}

func (cfg *SelectConfig) maxTries() int {
	if cfg.MaxTries <= 0 {
		return DefaultMaxTries
	}
	return cfg.MaxTries
}

// SelectCandidates reduces a pool of local optima to a batch of exactly
// RunNew mutually unique candidate points that do not collide with the
// evaluation history. The pool and history are given in unscaled coordinate
// space and are not modified. The utility function is consulted only for
// points synthesized during backfill.
//
// The returned error covers caller contract violations (empty pool, invalid
// bounds, missing randomness source); the three runtime failure modes are
// reported through the Result instead.
func SelectCandidates(pool []Candidate, history [][]float64, bounds Bounds, utility UtilityFunc, cfg SelectConfig) (Result, error) {
	if err := bounds.Validate(); err != nil {
		return Result{}, err
	}
	if len(pool) == 0 {
		return Result{}, fmt.Errorf("select: local optima pool is empty")
	}
	if cfg.RunNew < 1 {
		return Result{}, fmt.Errorf("select: runNew must be at least 1, got %d", cfg.RunNew)
	}
	if cfg.Rand == nil {
		return Result{}, fmt.Errorf("select: randomness source is required")
	}
	if utility == nil {
		return Result{}, fmt.Errorf("select: utility function is required")
	}

	batch := ClusterLocalOptima(pool, bounds, ClusterParams{
		Epsilon:           cfg.ClusterEpsilon,
		MinClusterUtility: cfg.MinClusterUtility,
		RunNew:            cfg.RunNew,
	})

	if failure := resolveDuplicates(batch, history, bounds, cfg); failure != nil {
		return Result{Failure: failure}, nil
	}

	batch, failure := backfill(batch, history, bounds, utility, cfg)
	if failure != nil {
		return Result{Failure: failure}, nil
	}

	for i := range batch {
		batch[i].duplicate = false
	}
	return Result{Batch: batch}, nil
}

// resolveDuplicates is backfill phase A: it replaces batch rows that collide
// with the evaluation history (or with earlier batch rows) by perturbed
// draws, rechecking after every pass, until the batch is clean or the retry
// ceiling is reached. Replaced rows lose their IsOptimum mark: they are no
// longer the true acquisition optimum, merely a nearby unique draw.
func resolveDuplicates(batch []Candidate, history [][]float64, bounds Bounds, cfg SelectConfig) *Failure {
	maxTries := cfg.maxTries()
	for tries := 0; ; tries++ {
		flagged := false
		for i := range batch {
			// Earlier batch rows join the comparison set so the batch stays
			// mutually unique, not just unique against history. The set is a
			// fresh slice; history stays read-only even when its backing
			// array has spare capacity.
			cmp := make([][]float64, 0, len(history)+i)
			cmp = append(cmp, history...)
			cmp = append(cmp, paramRows(batch[:i])...)
			batch[i].duplicate = markDuplicates([][]float64{batch[i].Params}, cmp, cfg.DuplicateTolerance)[0]
			flagged = flagged || batch[i].duplicate
		}
		if !flagged {
			return nil
		}
		if tries >= maxTries {
			return &Failure{
				Code: FailDuplicatesExhausted,
				Message: fmt.Sprintf("could not find unique parameters for the selected optima within %d tries; "+
					"the search space may be effectively discrete and exhausted", maxTries),
			}
		}

		// Compute all replacements before overwriting so the duplicate flags
		// keep referring to the pre-perturbation state of this pass.
		replacements := make(map[int][]float64)
		for i := range batch {
			if !batch[i].duplicate {
				continue
			}
			replacement, err := perturb(cfg.Rand, batch[i].Params, bounds, cfg.NoiseAdd)
			if err != nil {
				return &Failure{Code: FailPerturb, Message: err.Error()}
			}
			replacements[i] = replacement
		}
		for i, params := range replacements {
			batch[i].Params = params
			batch[i].IsOptimum = false
		}
	}
}

// backfill is phase B: it tops the batch up to RunNew points by perturbing
// the existing rows in rank order and accepting every draw that is unique
// against both the history and the batch built so far. Accepted draws get a
// freshly computed acquisition utility.
func backfill(batch []Candidate, history [][]float64, bounds Bounds, utility UtilityFunc, cfg SelectConfig) ([]Candidate, *Failure) {
	maxTries := cfg.maxTries()
	noiseAdd := cfg.NoiseAdd
	seeds := paramRows(batch)

	for tries := 0; ; tries++ {
		drawPoints := cfg.RunNew - len(batch)
		if drawPoints <= 0 {
			return batch, nil
		}
		if tries >= maxTries {
			return nil, &Failure{
				Code: FailBackfillExhausted,
				Message: fmt.Sprintf("could not draw %d additional unique parameter sets within %d tries; "+
					"the search space may be effectively discrete and exhausted", drawPoints, maxTries),
			}
		}

		for k := 0; k < drawPoints; k++ {
			// Cycle through the original representatives best-first so the
			// strongest regions seed the most draws.
			seed := seeds[k%len(seeds)]
			drawn, err := perturb(cfg.Rand, seed, bounds, noiseAdd)
			if err != nil {
				return nil, &Failure{Code: FailPerturb, Message: err.Error()}
			}

			cmp := make([][]float64, 0, len(history)+len(batch))
			cmp = append(cmp, history...)
			cmp = append(cmp, paramRows(batch)...)
			if markDuplicates([][]float64{drawn}, cmp, cfg.DuplicateTolerance)[0] {
				continue
			}
			batch = append(batch, Candidate{
				Params:  drawn,
				Utility: utility(bounds.ScaleToUnit(drawn)),
			})
		}
	}
}
