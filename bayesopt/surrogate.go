package bayesopt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Surrogate is the probabilistic regression model the selection step treats
// as an external collaborator. Fit consumes unit-scaled inputs; Predict
// returns the posterior mean and standard deviation at a unit-scaled point.
type Surrogate interface {
	Fit(x [][]float64, y []float64) error
	Predict(point []float64) (mean, sd float64)
}

// GP is a Gaussian-process regressor with a squared-exponential kernel. It
// is intentionally small: fixed hyperparameters, exact Cholesky inference.
// The optimization loop refits it from scratch every round, which is cheap
// at the history sizes sequential optimization deals with.
type GP struct {
	LengthScale float64
	Variance    float64
	// Noise is the observation noise added to the kernel diagonal. It also
	// keeps the factorization well conditioned when the history contains
	// tightly packed points.
	Noise float64

	x     [][]float64
	yMean float64
	chol  mat.Cholesky
	alpha *mat.VecDense
}

// NewGP returns a GP with workable defaults for unit-scaled inputs.
func NewGP() *GP {
	return &GP{LengthScale: 0.1, Variance: 1.0, Noise: 1e-6}
}

// Fit factorizes the kernel matrix over the training inputs. Inputs must be
// unit-scaled rows of equal dimension with one observation each.
func (g *GP) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("gp: no training points")
	}
	if len(x) != len(y) {
		return fmt.Errorf("gp: %d inputs but %d observations", len(x), len(y))
	}

	n := len(x)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := g.kernel(x[i], x[j])
			if i == j {
				v += g.Noise
			}
			k.SetSym(i, j, v)
		}
	}

	if ok := g.chol.Factorize(k); !ok {
		return fmt.Errorf("gp: kernel matrix is not positive definite")
	}

	g.yMean = stat.Mean(y, nil)
	centered := mat.NewVecDense(n, nil)
	for i, v := range y {
		centered.SetVec(i, v-g.yMean)
	}
	g.alpha = mat.NewVecDense(n, nil)
	if err := g.chol.SolveVecTo(g.alpha, centered); err != nil {
		return fmt.Errorf("gp: solving for weights: %w", err)
	}

	g.x = x
	return nil
}

// Predict returns the posterior mean and standard deviation at a unit-scaled
// point. Predict on an unfitted GP returns the prior.
func (g *GP) Predict(point []float64) (mean, sd float64) {
	if g.alpha == nil {
		return 0, math.Sqrt(g.Variance)
	}

	n := len(g.x)
	kstar := mat.NewVecDense(n, nil)
	for i, xi := range g.x {
		kstar.SetVec(i, g.kernel(point, xi))
	}

	mean = g.yMean + mat.Dot(kstar, g.alpha)

	v := mat.NewVecDense(n, nil)
	if err := g.chol.SolveVecTo(v, kstar); err != nil {
		return mean, 0
	}
	variance := g.Variance - mat.Dot(kstar, v)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// kernel is the squared-exponential covariance between two points.
func (g *GP) kernel(a, b []float64) float64 {
	dist2 := 0.0
	for i := range a {
		d := a[i] - b[i]
		dist2 += d * d
	}
	return g.Variance * math.Exp(-dist2/(2*g.LengthScale*g.LengthScale))
}

// Verify at compile time that *GP implements Surrogate.
var _ Surrogate = (*GP)(nil)
