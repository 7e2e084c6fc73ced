package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/khanhbrandy/ParBayesianOptimization/internal/history"
)

// WriteConvergencePlot renders the best-so-far objective against evaluation
// index as a PNG. The flat stretches show rounds that failed to improve on
// the incumbent.
func WriteConvergencePlot(path string, observations []*history.Observation) error {
	if len(observations) == 0 {
		return fmt.Errorf("report: no observations to plot")
	}

	pts := make(plotter.XYs, len(observations))
	best := observations[0].Objective
	for i, obs := range observations {
		if obs.Objective > best {
			best = obs.Objective
		}
		pts[i].X = float64(i)
		pts[i].Y = best
	}

	p := plot.New()
	p.Title.Text = "Convergence"
	p.X.Label.Text = "Evaluation"
	p.Y.Label.Text = "Best objective"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: building line: %w", err)
	}
	line.Width = vg.Points(1.5)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving plot: %w", err)
	}
	return nil
}
