package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khanhbrandy/ParBayesianOptimization/bayesopt"
)

// TuningConfig represents the tuning parameters of an optimization run.
// All fields are optional pointers so a partial JSON file only overrides
// what it mentions; the Get* accessors supply defaults for the rest.
type TuningConfig struct {
	// Candidate selection params
	ClusterEpsilon     *float64 `json:"cluster_epsilon,omitempty"`
	MinClusterUtility  *float64 `json:"min_cluster_utility,omitempty"`
	NoiseAdd           *float64 `json:"noise_add,omitempty"`
	MaxTries           *int     `json:"max_tries,omitempty"`
	DuplicateTolerance *float64 `json:"duplicate_tolerance,omitempty"`

	// Acquisition params
	Acquisition *string  `json:"acquisition,omitempty"` // "ei", "poi" or "ucb"
	Beta        *float64 `json:"beta,omitempty"`
	Xi          *float64 `json:"xi,omitempty"`

	// Loop params
	Restarts   *int `json:"restarts,omitempty"`
	InitPoints *int `json:"init_points,omitempty"`
	BatchSize  *int `json:"batch_size,omitempty"`
	Rounds     *int `json:"rounds,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ClusterEpsilon != nil && *c.ClusterEpsilon <= 0 {
		return fmt.Errorf("cluster_epsilon must be positive, got %f", *c.ClusterEpsilon)
	}
	if c.MinClusterUtility != nil {
		if *c.MinClusterUtility < 0 || *c.MinClusterUtility > 1 {
			return fmt.Errorf("min_cluster_utility must be between 0 and 1, got %f", *c.MinClusterUtility)
		}
	}
	if c.NoiseAdd != nil {
		if *c.NoiseAdd <= 0 || *c.NoiseAdd > 1 {
			return fmt.Errorf("noise_add must be in (0, 1], got %f", *c.NoiseAdd)
		}
	}
	if c.MaxTries != nil && *c.MaxTries < 1 {
		return fmt.Errorf("max_tries must be at least 1, got %d", *c.MaxTries)
	}
	if c.DuplicateTolerance != nil && *c.DuplicateTolerance < 0 {
		return fmt.Errorf("duplicate_tolerance must be non-negative, got %f", *c.DuplicateTolerance)
	}
	if c.Acquisition != nil {
		switch bayesopt.AcquisitionKind(*c.Acquisition) {
		case bayesopt.ExpectedImprovement, bayesopt.ProbabilityOfImprovement, bayesopt.UpperConfidenceBound:
		default:
			return fmt.Errorf("unknown acquisition %q (want ei, poi or ucb)", *c.Acquisition)
		}
	}
	if c.Restarts != nil && *c.Restarts < 1 {
		return fmt.Errorf("restarts must be at least 1, got %d", *c.Restarts)
	}
	if c.InitPoints != nil && *c.InitPoints < 1 {
		return fmt.Errorf("init_points must be at least 1, got %d", *c.InitPoints)
	}
	if c.BatchSize != nil && *c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", *c.BatchSize)
	}
	if c.Rounds != nil && *c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", *c.Rounds)
	}
	return nil
}

// GetClusterEpsilon returns the cluster_epsilon value or the default.
func (c *TuningConfig) GetClusterEpsilon() float64 {
	if c.ClusterEpsilon == nil {
		return bayesopt.DefaultClusterEpsilon
	}
	return *c.ClusterEpsilon
}

// GetMinClusterUtility returns the min_cluster_utility pointer as-is. An
// omitted value is meaningful: it selects single-best-point mode instead of
// threshold selection, so there is no fallback default.
func (c *TuningConfig) GetMinClusterUtility() *float64 {
	return c.MinClusterUtility
}

// GetNoiseAdd returns the noise_add value or the default.
func (c *TuningConfig) GetNoiseAdd() float64 {
	if c.NoiseAdd == nil {
		return bayesopt.DefaultNoiseAdd
	}
	return *c.NoiseAdd
}

// GetMaxTries returns the max_tries value or the default.
func (c *TuningConfig) GetMaxTries() int {
	if c.MaxTries == nil {
		return bayesopt.DefaultMaxTries
	}
	return *c.MaxTries
}

// GetDuplicateTolerance returns the duplicate_tolerance value or the
// default of zero, meaning exact match.
func (c *TuningConfig) GetDuplicateTolerance() float64 {
	if c.DuplicateTolerance == nil {
		return 0
	}
	return *c.DuplicateTolerance
}

// GetAcquisition returns the acquisition kind or the default.
func (c *TuningConfig) GetAcquisition() bayesopt.AcquisitionKind {
	if c.Acquisition == nil {
		return bayesopt.ExpectedImprovement
	}
	return bayesopt.AcquisitionKind(*c.Acquisition)
}

// GetBeta returns the beta value or the default.
func (c *TuningConfig) GetBeta() float64 {
	if c.Beta == nil {
		return bayesopt.DefaultBeta
	}
	return *c.Beta
}

// GetXi returns the xi value or the default.
func (c *TuningConfig) GetXi() float64 {
	if c.Xi == nil {
		return 0
	}
	return *c.Xi
}

// GetRestarts returns the restarts value or the default.
func (c *TuningConfig) GetRestarts() int {
	if c.Restarts == nil {
		return bayesopt.DefaultRestarts
	}
	return *c.Restarts
}

// GetInitPoints returns the init_points value or the default.
func (c *TuningConfig) GetInitPoints() int {
	if c.InitPoints == nil {
		return bayesopt.DefaultInitPoints
	}
	return *c.InitPoints
}

// GetBatchSize returns the batch_size value or the default.
func (c *TuningConfig) GetBatchSize() int {
	if c.BatchSize == nil {
		return bayesopt.DefaultRunNew
	}
	return *c.BatchSize
}

// GetRounds returns the rounds value or the default.
func (c *TuningConfig) GetRounds() int {
	if c.Rounds == nil {
		return bayesopt.DefaultRounds
	}
	return *c.Rounds
}
