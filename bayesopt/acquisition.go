package bayesopt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// AcquisitionKind names one of the built-in acquisition functions.
type AcquisitionKind string

const (
	// ExpectedImprovement balances the probability and the magnitude of
	// improving on the best observation. The usual default.
	ExpectedImprovement AcquisitionKind = "ei"
	// ProbabilityOfImprovement is the conservative variant: it only scores
	// how likely an improvement is, not how large.
	ProbabilityOfImprovement AcquisitionKind = "poi"
	// UpperConfidenceBound trades off the posterior mean against its
	// uncertainty through the Beta weight.
	UpperConfidenceBound AcquisitionKind = "ucb"
)

// AcquisitionParams carries the exploration settings shared by the built-in
// acquisition functions. Objectives are maximized throughout.
type AcquisitionParams struct {
	// Beta is the exploration weight for UCB; higher explores more.
	Beta float64
	// Xi is the minimum improvement margin for EI and POI.
	Xi float64
	// BestSoFar is the best objective value observed so far, used by EI
	// and POI.
	BestSoFar float64
}

// Acquisition returns the utility of a posterior prediction under the named
// acquisition function.
type Acquisition func(mean, sd float64, params AcquisitionParams) float64

// NewAcquisition resolves an acquisition kind to its implementation.
func NewAcquisition(kind AcquisitionKind) (Acquisition, error) {
	switch kind {
	case ExpectedImprovement:
		return expectedImprovement, nil
	case ProbabilityOfImprovement:
		return probabilityOfImprovement, nil
	case UpperConfidenceBound:
		return upperConfidenceBound, nil
	default:
		return nil, fmt.Errorf("unknown acquisition function %q", kind)
	}
}

func upperConfidenceBound(mean, sd float64, params AcquisitionParams) float64 {
	return mean + params.Beta*sd
}

func probabilityOfImprovement(mean, sd float64, params AcquisitionParams) float64 {
	if sd <= 0 {
		if mean > params.BestSoFar+params.Xi {
			return 1
		}
		return 0
	}
	z := (mean - params.BestSoFar - params.Xi) / sd
	return distuv.UnitNormal.CDF(z)
}

func expectedImprovement(mean, sd float64, params AcquisitionParams) float64 {
	improvement := mean - params.BestSoFar - params.Xi
	if sd <= 0 {
		return math.Max(improvement, 0)
	}
	z := improvement / sd
	return improvement*distuv.UnitNormal.CDF(z) + sd*distuv.UnitNormal.Prob(z)
}
