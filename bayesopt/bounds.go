package bayesopt

import (
	"fmt"
	"math"
)

// ParamKind describes the value grid of a single parameter dimension.
type ParamKind int

const (
	// Continuous parameters take any float64 value within bounds.
	Continuous ParamKind = iota
	// Integer parameters are rounded to the nearest whole value. An integer
	// dimension makes the search space finite, which is what allows the
	// backfill retry loops to genuinely exhaust it.
	Integer
)

// Param is a single named parameter dimension with inclusive bounds.
type Param struct {
	Name string
	Min  float64
	Max  float64
	Kind ParamKind
}

// Span returns the width of the parameter's range.
func (p Param) Span() float64 { return p.Max - p.Min }

// Bounds is an ordered list of parameter dimensions. It defines the
// dimensionality of the search space and the min-max scaling transform.
// Bounds are treated as immutable for the lifetime of a selection call.
type Bounds []Param

// Dim returns the number of parameter dimensions.
func (b Bounds) Dim() int { return len(b) }

// Names returns the parameter names in declaration order.
func (b Bounds) Names() []string {
	names := make([]string, len(b))
	for i, p := range b {
		names[i] = p.Name
	}
	return names
}

// Validate checks that the bounds descriptor is well formed: at least one
// dimension, unique non-empty names, and Min <= Max per dimension. A
// zero-width dimension is allowed here but will fail perturbation later.
func (b Bounds) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("bounds: need at least one parameter dimension")
	}
	seen := make(map[string]bool, len(b))
	for i, p := range b {
		if p.Name == "" {
			return fmt.Errorf("bounds: parameter %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("bounds: duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = true
		if math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0) {
			return fmt.Errorf("bounds: parameter %q has non-finite limits", p.Name)
		}
		if p.Min > p.Max {
			return fmt.Errorf("bounds: parameter %q has min %g > max %g", p.Name, p.Min, p.Max)
		}
	}
	return nil
}

// ScaleToUnit maps an unscaled point into the [0,1] per-dimension coordinate
// system used for clustering distance and surrogate model input.
func (b Bounds) ScaleToUnit(point []float64) []float64 {
	scaled := make([]float64, len(b))
	for i, p := range b {
		if span := p.Span(); span > 0 {
			scaled[i] = (point[i] - p.Min) / span
		}
	}
	return scaled
}

// UnscaleFromUnit is the inverse of ScaleToUnit. Integer dimensions are
// rounded back onto their grid.
func (b Bounds) UnscaleFromUnit(scaled []float64) []float64 {
	point := make([]float64, len(b))
	for i, p := range b {
		v := p.Min + scaled[i]*p.Span()
		point[i] = b.snap(i, v)
	}
	return point
}

// Clamp constrains a point to the bounds in place and snaps integer
// dimensions to their grid.
func (b Bounds) Clamp(point []float64) {
	for i := range b {
		point[i] = b.snap(i, point[i])
	}
}

// snap clamps a single coordinate into its dimension and rounds it if the
// dimension is integer-valued.
func (b Bounds) snap(i int, v float64) float64 {
	p := b[i]
	if p.Kind == Integer {
		v = math.Round(v)
	}
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	return v
}
