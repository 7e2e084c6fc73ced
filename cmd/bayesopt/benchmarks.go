package main

import (
	"fmt"
	"math"

	"github.com/khanhbrandy/ParBayesianOptimization/bayesopt"
)

// benchmark is a named test objective with its natural bounds. All
// benchmarks are classic minimization surfaces negated so the optimizer,
// which maximizes, drives toward their known minima.
type benchmark struct {
	bounds    bayesopt.Bounds
	objective bayesopt.Objective
}

func lookupBenchmark(name string) (benchmark, error) {
	switch name {
	case "branin":
		return benchmark{
			bounds: bayesopt.Bounds{
				{Name: "x1", Min: -5, Max: 10},
				{Name: "x2", Min: 0, Max: 15},
			},
			objective: func(p []float64) (float64, error) {
				return -branin(p[0], p[1]), nil
			},
		}, nil
	case "himmelblau":
		return benchmark{
			bounds: bayesopt.Bounds{
				{Name: "x", Min: -5, Max: 5},
				{Name: "y", Min: -5, Max: 5},
			},
			objective: func(p []float64) (float64, error) {
				return -himmelblau(p[0], p[1]), nil
			},
		}, nil
	case "sphere":
		return benchmark{
			bounds: bayesopt.Bounds{
				{Name: "x", Min: -5, Max: 5},
				{Name: "y", Min: -5, Max: 5},
				{Name: "z", Min: -5, Max: 5},
			},
			objective: func(p []float64) (float64, error) {
				sum := 0.0
				for _, v := range p {
					sum += v * v
				}
				return -sum, nil
			},
		}, nil
	default:
		return benchmark{}, fmt.Errorf("unknown objective %q (want branin, himmelblau or sphere)", name)
	}
}

// branin has three global minima of value ~0.398.
func branin(x1, x2 float64) float64 {
	const (
		a = 1.0
		b = 5.1 / (4 * math.Pi * math.Pi)
		c = 5 / math.Pi
		r = 6.0
		s = 10.0
		t = 1 / (8 * math.Pi)
	)
	term := x2 - b*x1*x1 + c*x1 - r
	return a*term*term + s*(1-t)*math.Cos(x1) + s
}

// himmelblau has four global minima of value 0.
func himmelblau(x, y float64) float64 {
	a := x*x + y - 11
	b := x + y*y - 7
	return a*a + b*b
}
