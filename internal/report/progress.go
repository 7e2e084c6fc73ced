// Package report renders optimization run reports: an interactive HTML
// progress chart and a static convergence plot.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/khanhbrandy/ParBayesianOptimization/internal/history"
)

// WriteProgressChart renders an HTML scatter of every scored observation:
// evaluation index on X, objective on Y, colored by optimization round so
// the initial design and later rounds are visually distinct.
func WriteProgressChart(path string, observations []*history.Observation) error {
	if len(observations) == 0 {
		return fmt.Errorf("report: no observations to chart")
	}

	data := make([]opts.ScatterData, 0, len(observations))
	maxRound := 0
	for i, obs := range observations {
		if obs.Round > maxRound {
			maxRound = obs.Round
		}
		data = append(data, opts.ScatterData{Value: []interface{}{i, obs.Objective, obs.Round}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Optimization Progress", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Optimization Progress", Subtitle: fmt.Sprintf("observations=%d rounds=%d", len(observations), maxRound)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Evaluation", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Objective", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxRound),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("observations", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("report: rendering chart: %w", err)
	}
	return nil
}
