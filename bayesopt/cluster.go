package bayesopt

import (
	"math"
	"sort"
)

// Constants for clustering configuration
const (
	// DefaultClusterEpsilon is the base neighborhood radius in unit-scaled
	// space. The effective DBSCAN radius is Epsilon * sqrt(dim) so that the
	// per-dimension tolerance stays constant as dimensionality grows.
	DefaultClusterEpsilon = 0.01
	// clusterMinPts is fixed at 1 so every local optimum belongs to some
	// cluster; singleton optima survive as their own cluster.
	clusterMinPts = 1
)

// ClusterParams configures density clustering and ranking of the local
// optima pool.
type ClusterParams struct {
	// Epsilon is the base neighborhood radius in unit-scaled space.
	// Zero selects DefaultClusterEpsilon.
	Epsilon float64
	// MinClusterUtility drops cluster representatives whose utility relative
	// to the pool maximum falls below this threshold. When nil, clustering is
	// skipped entirely and only the single best point is selected.
	MinClusterUtility *float64
	// RunNew caps the number of surviving representatives.
	RunNew int
}

// ClusterLocalOptima reduces a pool of local optima to at most RunNew cluster
// representatives ranked by relative utility. The pool is given in unscaled
// coordinate space; distances are measured after min-max scaling so the
// radius is comparable across dimensions. Every returned candidate is marked
// IsOptimum. The input pool is not modified.
//
// Restart-based local search frequently converges many random starts to the
// same optimum; without this reduction the batch would be dominated by
// near-identical repeats of the single best region.
func ClusterLocalOptima(pool []Candidate, bounds Bounds, params ClusterParams) []Candidate {
	if len(pool) == 0 {
		return nil
	}

	// No threshold configured: terminal case, return the single
	// maximum-utility point. Ties resolve to the lowest pool index.
	if params.MinClusterUtility == nil {
		best := 0
		for i := 1; i < len(pool); i++ {
			if pool[i].Utility > pool[best].Utility {
				best = i
			}
		}
		rep := pool[best].Clone()
		rep.IsOptimum = true
		return []Candidate{rep}
	}

	maxUtility := pool[0].Utility
	for _, c := range pool[1:] {
		if c.Utility > maxUtility {
			maxUtility = c.Utility
		}
	}
	relative := make([]float64, len(pool))
	for i, c := range pool {
		if maxUtility != 0 {
			relative[i] = c.Utility / maxUtility
		}
	}

	scaled := make([][]float64, len(pool))
	for i, c := range pool {
		scaled[i] = bounds.ScaleToUnit(c.Params)
	}

	eps := params.Epsilon
	if eps == 0 {
		eps = DefaultClusterEpsilon
	}
	eps *= math.Sqrt(float64(bounds.Dim()))

	labels := dbscan(scaled, eps, clusterMinPts)

	// Within each cluster keep only the point with maximal relative utility.
	// Ties resolve to the lowest pool index, which makes the selection
	// deterministic for a given pool order.
	representative := make(map[int]int)
	for i, label := range labels {
		if best, ok := representative[label]; !ok || relative[i] > relative[best] {
			representative[label] = i
		}
	}

	selected := make([]int, 0, len(representative))
	bestRep := -1
	for _, idx := range representative {
		if bestRep < 0 || relative[idx] > relative[bestRep] || (relative[idx] == relative[bestRep] && idx < bestRep) {
			bestRep = idx
		}
		if relative[idx] >= *params.MinClusterUtility {
			selected = append(selected, idx)
		}
	}
	// Degenerate utilities (for example an all-zero pool) can leave every
	// representative under the threshold; the best one still survives so
	// the batch is never empty.
	if len(selected) == 0 {
		selected = append(selected, bestRep)
	}

	// Descending by relative utility, pool index as the deterministic
	// tie-break.
	sort.Slice(selected, func(a, b int) bool {
		if relative[selected[a]] != relative[selected[b]] {
			return relative[selected[a]] > relative[selected[b]]
		}
		return selected[a] < selected[b]
	})

	if params.RunNew > 0 && len(selected) > params.RunNew {
		selected = selected[:params.RunNew]
	}

	reps := make([]Candidate, len(selected))
	for i, idx := range selected {
		reps[i] = pool[idx].Clone()
		reps[i].IsOptimum = true
	}
	return reps
}

// dbscan performs density-based clustering over unit-scaled points using
// Euclidean distance. Returns a cluster label per point; with minPts=1 no
// point is ever labelled noise. Brute-force neighborhood queries are fine
// here: the pool is a few hundred restart results at most.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	n := len(points)
	labels := make([]int, n) // 0=unvisited, >0=clusterID
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue // Already processed
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			continue // Unreachable with minPts=1; kept for symmetry
		}

		clusterID++
		expandCluster(points, labels, i, neighbors, clusterID, eps, minPts)
	}

	return labels
}

// expandCluster expands a cluster from a core point.
func expandCluster(points [][]float64, labels []int, seedIdx int, neighbors []int,
	clusterID int, eps float64, minPts int) {

	labels[seedIdx] = clusterID

	// Queue-based expansion over density-reachable points
	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]
		if labels[idx] != 0 {
			continue // Already processed
		}

		labels[idx] = clusterID
		newNeighbors := regionQuery(points, idx, eps)
		if len(newNeighbors) >= minPts {
			neighbors = append(neighbors, newNeighbors...)
		}
	}
}

// regionQuery returns indices of all points within eps of points[idx],
// including idx itself.
func regionQuery(points [][]float64, idx int, eps float64) []int {
	eps2 := eps * eps // Squared distance avoids sqrt
	var neighbors []int
	for i, p := range points {
		dist2 := 0.0
		for d, v := range points[idx] {
			diff := p[d] - v
			dist2 += diff * diff
		}
		if dist2 <= eps2 {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}
