package bayesopt

// Candidate is a single point in unscaled parameter space together with its
// acquisition utility. IsOptimum records whether the point came directly from
// local-optimum search or was synthesized by noise perturbation.
type Candidate struct {
	Params  []float64
	Utility float64
	// IsOptimum is true for points produced by the restart optimizer and
	// false for points replaced or synthesized by perturbation.
	IsOptimum bool

	// duplicate is a transient flag used during selection; it is always
	// cleared before a batch is returned.
	duplicate bool
}

// Clone returns a deep copy of the candidate with the transient state reset.
func (c Candidate) Clone() Candidate {
	params := make([]float64, len(c.Params))
	copy(params, c.Params)
	return Candidate{Params: params, Utility: c.Utility, IsOptimum: c.IsOptimum}
}

// paramRows extracts the coordinate rows of a batch.
func paramRows(batch []Candidate) [][]float64 {
	rows := make([][]float64, len(batch))
	for i, c := range batch {
		rows[i] = c.Params
	}
	return rows
}
