// Package bayesopt implements sequential Bayesian optimization with a
// clustering-based candidate selection step.
//
// Each round fits a surrogate model to the evaluation history, optimizes the
// acquisition surface from many random restarts, and reduces the resulting
// pool of local optima to a batch of mutually unique candidate points. Near
// identical optima are grouped by density clustering, each cluster is
// represented by its highest-utility point, and any shortfall below the
// requested batch size is backfilled by bounded random perturbation of the
// surviving representatives. The selected batch is guaranteed unique against
// the evaluation history, or the round reports a diagnostic failure instead
// of returning a violating batch.
package bayesopt
