package bayesopt

import "math"

// markDuplicates reports, for each candidate row, whether an exact
// elementwise match exists anywhere in the comparison set. Comparison is full
// floating-point equality per dimension; tolerance is an optional absolute
// per-dimension slack that defaults to zero. Rows within the candidate set
// are not compared against each other; callers that need mutual uniqueness
// include earlier rows in the comparison set explicitly.
//
// This is the sole oracle for "has this parameter combination been tried".
// It deliberately does not implement near-duplicate suppression: the
// clustering stage already collapses near-identical optima, and the
// downstream surrogate fit only breaks on exactly repeated input rows.
func markDuplicates(rows, against [][]float64, tolerance float64) []bool {
	flags := make([]bool, len(rows))
	for i, row := range rows {
		for _, other := range against {
			if rowsEqual(row, other, tolerance) {
				flags[i] = true
				break
			}
		}
	}
	return flags
}

// rowsEqual reports per-dimension equality of two coordinate rows within an
// absolute tolerance. A zero tolerance means exact float equality.
func rowsEqual(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if tolerance == 0 {
			if a[i] != b[i] {
				return false
			}
		} else if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}
