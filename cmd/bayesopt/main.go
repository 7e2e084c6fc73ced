// Command bayesopt runs the sequential Bayesian optimization loop against a
// built-in benchmark objective, optionally persisting the evaluation history
// to sqlite and rendering progress reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/khanhbrandy/ParBayesianOptimization/bayesopt"
	"github.com/khanhbrandy/ParBayesianOptimization/internal/config"
	"github.com/khanhbrandy/ParBayesianOptimization/internal/history"
	"github.com/khanhbrandy/ParBayesianOptimization/internal/report"
	"github.com/khanhbrandy/ParBayesianOptimization/internal/version"
)

var (
	objectiveName = flag.String("objective", "branin", "Benchmark objective: branin, himmelblau or sphere")
	configPath    = flag.String("config", "", "Optional tuning config JSON file")
	dbPath        = flag.String("db", "", "Optional sqlite file for the evaluation history")
	reportDir     = flag.String("report-dir", "", "Optional directory for HTML/PNG reports")
	rounds        = flag.Int("rounds", 0, "Optimization rounds (0 = config default)")
	initPoints    = flag.Int("init", 0, "Initial design size (0 = config default)")
	batchSize     = flag.Int("batch", 0, "Candidates per round (0 = config default)")
	restarts      = flag.Int("restarts", 0, "Acquisition optimizer restarts (0 = config default)")
	seed          = flag.Int64("seed", 0, "Random seed (0 = from clock)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(); err != nil {
		log.Fatalf("bayesopt: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			return err
		}
		tuning = loaded
	}

	bench, err := lookupBenchmark(*objectiveName)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	log.Printf("run %s: objective=%s dims=%d", runID, *objectiveName, bench.bounds.Dim())

	var store *history.Store
	if *dbPath != "" {
		db, err := history.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = history.NewStore(db)
	}

	cfg := bayesopt.Config{
		Bounds:             bench.bounds,
		Objective:          bench.objective,
		InitPoints:         orDefault(*initPoints, tuning.GetInitPoints()),
		Rounds:             orDefault(*rounds, tuning.GetRounds()),
		RunNew:             orDefault(*batchSize, tuning.GetBatchSize()),
		Restarts:           orDefault(*restarts, tuning.GetRestarts()),
		Acquisition:        tuning.GetAcquisition(),
		Beta:               tuning.GetBeta(),
		Xi:                 tuning.GetXi(),
		MinClusterUtility:  tuning.GetMinClusterUtility(),
		ClusterEpsilon:     tuning.GetClusterEpsilon(),
		NoiseAdd:           tuning.GetNoiseAdd(),
		DuplicateTolerance: tuning.GetDuplicateTolerance(),
		MaxTries:           tuning.GetMaxTries(),
		Seed:               *seed,
		Logf:               log.Printf,
	}
	if store != nil {
		cfg.OnObservation = func(obs bayesopt.Observation) {
			record := &history.Observation{
				RunID:     runID,
				Round:     obs.Round,
				Params:    obs.Params,
				Objective: obs.Objective,
				Utility:   obs.Utility,
				IsOptimum: obs.IsOptimum,
			}
			if err := store.Insert(record); err != nil {
				log.Printf("failed to persist observation: %v", err)
			}
		}
	}

	optimizer, err := bayesopt.New(cfg)
	if err != nil {
		return err
	}

	result, err := optimizer.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("run %s: best objective %.6g at %v after %d rounds",
		runID, result.Best.Objective, result.Best.Params, result.Rounds)
	if result.StopReason != "" {
		log.Printf("run %s: stopped early: %s", runID, result.StopReason)
	}

	if *reportDir != "" {
		if err := writeReports(*reportDir, result); err != nil {
			return err
		}
	}
	return nil
}

// writeReports renders the progress chart and convergence plot from the
// in-memory run result.
func writeReports(dir string, result *bayesopt.RunResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	observations := make([]*history.Observation, len(result.Observations))
	for i, obs := range result.Observations {
		observations[i] = &history.Observation{
			Round:     obs.Round,
			Params:    obs.Params,
			Objective: obs.Objective,
			Utility:   obs.Utility,
			IsOptimum: obs.IsOptimum,
		}
	}

	htmlPath := filepath.Join(dir, "progress.html")
	if err := report.WriteProgressChart(htmlPath, observations); err != nil {
		return err
	}
	pngPath := filepath.Join(dir, "convergence.png")
	if err := report.WriteConvergencePlot(pngPath, observations); err != nil {
		return err
	}
	log.Printf("reports written to %s and %s", htmlPath, pngPath)
	return nil
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
