package bayesopt

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Default loop settings.
const (
	DefaultInitPoints = 8
	DefaultRounds     = 10
	DefaultRunNew     = 1
	DefaultBeta       = 2.0
)

// Objective is the expensive function being optimized. It receives unscaled
// parameters and returns a score to maximize.
type Objective func(params []float64) (float64, error)

// Observation is one scored point of the evaluation history.
type Observation struct {
	Params    []float64
	Objective float64
	// Utility is the acquisition value the point was selected at; zero for
	// the initial design.
	Utility float64
	// Round is the optimization round that produced the point; zero marks
	// the initial design.
	Round int
	// IsOptimum records whether the point came from local-optimum search or
	// was synthesized by noise.
	IsOptimum bool
}

// Config configures an optimization run.
type Config struct {
	Bounds    Bounds
	Objective Objective

	// InitPoints is the size of the initial uniform design.
	InitPoints int
	// Rounds is the number of fit-select-evaluate rounds after the initial
	// design.
	Rounds int
	// RunNew is the batch size requested from candidate selection each
	// round.
	RunNew int

	// Acquisition selects the utility formula; empty means EI.
	Acquisition AcquisitionKind
	// Beta and Xi are the exploration settings; zero Beta selects the
	// default for UCB.
	Beta float64
	Xi   float64

	// Restarts is the number of local searches per round.
	Restarts int

	// MinClusterUtility, ClusterEpsilon, NoiseAdd, DuplicateTolerance and
	// MaxTries tune candidate selection; see SelectConfig.
	MinClusterUtility  *float64
	ClusterEpsilon     float64
	NoiseAdd           float64
	DuplicateTolerance float64
	MaxTries           int

	// Surrogate overrides the default GP model.
	Surrogate Surrogate

	// Seed makes the run reproducible; zero seeds from the clock.
	Seed int64

	// Logf receives per-round progress lines; nil keeps the loop silent.
	Logf func(format string, args ...any)
	// OnObservation is invoked for every scored point as it is recorded,
	// in order. Useful for persisting the history as the run progresses.
	OnObservation func(Observation)
}

// RunResult is the outcome of an optimization run.
type RunResult struct {
	Best         Observation
	Observations []Observation
	Rounds       int
	// StopReason is non-empty when a selection failure ended the run before
	// the configured round budget. This is graceful degradation, not an
	// error: every observation up to that point is still valid.
	StopReason string
}

// Optimizer drives the sequential optimization loop.
type Optimizer struct {
	cfg         Config
	rng         *rand.Rand
	surrogate   Surrogate
	acquisition Acquisition
}

// New validates the configuration and prepares an optimizer.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, err
	}
	if cfg.Objective == nil {
		return nil, fmt.Errorf("optimizer: objective function is required")
	}
	if cfg.InitPoints <= 0 {
		cfg.InitPoints = DefaultInitPoints
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultRounds
	}
	if cfg.RunNew <= 0 {
		cfg.RunNew = DefaultRunNew
	}
	if cfg.Acquisition == "" {
		cfg.Acquisition = ExpectedImprovement
	}
	if cfg.Beta == 0 {
		cfg.Beta = DefaultBeta
	}

	acq, err := NewAcquisition(cfg.Acquisition)
	if err != nil {
		return nil, err
	}

	surrogate := cfg.Surrogate
	if surrogate == nil {
		surrogate = NewGP()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Optimizer{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		surrogate:   surrogate,
		acquisition: acq,
	}, nil
}

// Run executes the optimization loop: initial design, then repeated rounds
// of surrogate fit, acquisition optimization, candidate selection and
// objective evaluation. The context is checked between rounds.
func (o *Optimizer) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	if err := o.initialDesign(ctx, result); err != nil {
		return nil, err
	}

	for round := 1; round <= o.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, failure, err := o.selectRound(result)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		if failure != nil {
			result.StopReason = fmt.Sprintf("%s: %s", failure.Code, failure.Message)
			o.logf("round %d: stopping early: %s", round, result.StopReason)
			break
		}

		for _, c := range batch {
			score, err := o.cfg.Objective(c.Params)
			if err != nil {
				return nil, fmt.Errorf("round %d: evaluating objective: %w", round, err)
			}
			o.record(result, Observation{
				Params:    c.Params,
				Objective: score,
				Utility:   c.Utility,
				Round:     round,
				IsOptimum: c.IsOptimum,
			})
		}
		result.Rounds = round
		o.logf("round %d: evaluated %d candidates, best objective %.6g", round, len(batch), result.Best.Objective)
	}

	return result, nil
}

// initialDesign evaluates a uniform random design over the bounds, redrawing
// collisions so the starting history is already unique. Redraws are bounded by
// the same retry ceiling as the selection loops: an integer grid smaller than
// InitPoints would otherwise never terminate.
func (o *Optimizer) initialDesign(ctx context.Context, result *RunResult) error {
	bounds := o.cfg.Bounds
	maxTries := o.cfg.MaxTries
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}

	var rows [][]float64
	tries := 0
	for len(rows) < o.cfg.InitPoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tries >= maxTries {
			return fmt.Errorf("initial design: could not draw %d unique points within %d tries; "+
				"the search space may hold fewer distinct points than the requested design size",
				o.cfg.InitPoints, maxTries)
		}
		point := make([]float64, bounds.Dim())
		for i, p := range bounds {
			point[i] = p.Min + o.rng.Float64()*p.Span()
		}
		bounds.Clamp(point)
		if markDuplicates([][]float64{point}, rows, o.cfg.DuplicateTolerance)[0] {
			tries++
			continue
		}
		rows = append(rows, point)
	}

	for _, point := range rows {
		score, err := o.cfg.Objective(point)
		if err != nil {
			return fmt.Errorf("initial design: evaluating objective: %w", err)
		}
		o.record(result, Observation{Params: point, Objective: score})
	}
	o.logf("initial design: evaluated %d points, best objective %.6g", len(rows), result.Best.Objective)
	return nil
}

// selectRound fits the surrogate to the current history, optimizes the
// acquisition surface and runs candidate selection.
func (o *Optimizer) selectRound(result *RunResult) ([]Candidate, *Failure, error) {
	bounds := o.cfg.Bounds

	scaled := make([][]float64, len(result.Observations))
	y := make([]float64, len(result.Observations))
	historyRows := make([][]float64, len(result.Observations))
	for i, obs := range result.Observations {
		scaled[i] = bounds.ScaleToUnit(obs.Params)
		y[i] = obs.Objective
		historyRows[i] = obs.Params
	}

	if err := o.surrogate.Fit(scaled, y); err != nil {
		return nil, nil, fmt.Errorf("fitting surrogate: %w", err)
	}

	acqParams := AcquisitionParams{
		Beta:      o.cfg.Beta,
		Xi:        o.cfg.Xi,
		BestSoFar: result.Best.Objective,
	}
	utility := func(point []float64) float64 {
		mean, sd := o.surrogate.Predict(point)
		return o.acquisition(mean, sd, acqParams)
	}

	optima, err := FindLocalOptima(o.rng, utility, bounds.Dim(), o.cfg.Restarts)
	if err != nil {
		return nil, nil, err
	}
	pool := PoolFromOptima(optima, bounds)

	res, err := SelectCandidates(pool, historyRows, bounds, utility, SelectConfig{
		RunNew:             o.cfg.RunNew,
		MinClusterUtility:  o.cfg.MinClusterUtility,
		ClusterEpsilon:     o.cfg.ClusterEpsilon,
		NoiseAdd:           o.cfg.NoiseAdd,
		DuplicateTolerance: o.cfg.DuplicateTolerance,
		MaxTries:           o.cfg.MaxTries,
		Rand:               o.rng,
	})
	if err != nil {
		return nil, nil, err
	}
	if !res.OK() {
		return nil, res.Failure, nil
	}
	return res.Batch, nil, nil
}

// record appends an observation, updates the incumbent best and notifies the
// observer callback.
func (o *Optimizer) record(result *RunResult, obs Observation) {
	result.Observations = append(result.Observations, obs)
	if len(result.Observations) == 1 || obs.Objective > result.Best.Objective {
		result.Best = obs
	}
	if o.cfg.OnObservation != nil {
		o.cfg.OnObservation(obs)
	}
}

func (o *Optimizer) logf(format string, args ...any) {
	if o.cfg.Logf != nil {
		o.cfg.Logf(format, args...)
	}
}
