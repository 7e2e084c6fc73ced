package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanhbrandy/ParBayesianOptimization/internal/history"
)

func sampleObservations() []*history.Observation {
	return []*history.Observation{
		{Round: 0, Params: []float64{1, 1}, Objective: -4},
		{Round: 0, Params: []float64{2, 2}, Objective: -8},
		{Round: 1, Params: []float64{0.5, 0.5}, Objective: -0.5, Utility: 0.9, IsOptimum: true},
		{Round: 2, Params: []float64{0.1, 0.1}, Objective: -0.02, Utility: 0.4},
	}
}

func TestWriteProgressChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.html")
	if err := WriteProgressChart(path, sampleObservations()); err != nil {
		t.Fatalf("WriteProgressChart: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading chart: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "Optimization Progress") {
		t.Error("chart is missing its title")
	}
	if !strings.Contains(html, "echarts") {
		t.Error("chart does not look like an echarts render")
	}
}

func TestWriteProgressChartEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.html")
	if err := WriteProgressChart(path, nil); err == nil {
		t.Fatal("expected error for empty observation list")
	}
}

func TestWriteConvergencePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	if err := WriteConvergencePlot(path, sampleObservations()); err != nil {
		t.Fatalf("WriteConvergencePlot: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestWriteConvergencePlotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	if err := WriteConvergencePlot(path, nil); err == nil {
		t.Fatal("expected error for empty observation list")
	}
}
