package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Observation is a persisted scored point: the parameter coordinates in
// unscaled space, the objective value, and the selection metadata.
type Observation struct {
	ObservationID string    `json:"observation_id"`
	RunID         string    `json:"run_id"`
	Round         int       `json:"round"`
	Params        []float64 `json:"params"`
	Objective     float64   `json:"objective"`
	Utility       float64   `json:"utility"`
	IsOptimum     bool      `json:"is_optimum"`
	CreatedAt     int64     `json:"created_at"`
}

// Store provides persistence for observations.
type Store struct {
	db *DB
}

// NewStore creates a Store over an open history database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Insert persists a new observation. If ObservationID is empty, a UUID is
// generated.
func (s *Store) Insert(obs *Observation) error {
	if obs.ObservationID == "" {
		obs.ObservationID = uuid.New().String()
	}
	if obs.CreatedAt == 0 {
		obs.CreatedAt = time.Now().UnixNano()
	}

	paramsJSON, err := json.Marshal(obs.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO observations (
				observation_id, run_id, round, params_json,
				objective, utility, is_optimum, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			obs.ObservationID, obs.RunID, obs.Round, string(paramsJSON),
			obs.Objective, obs.Utility, boolToInt(obs.IsOptimum), obs.CreatedAt,
		)
		return err
	})
}

// ListByRun returns all observations for a run in insertion order.
func (s *Store) ListByRun(runID string) ([]*Observation, error) {
	rows, err := s.db.Query(`
		SELECT observation_id, run_id, round, params_json,
		       objective, utility, is_optimum, created_at
		FROM observations
		WHERE run_id = ?
		ORDER BY created_at ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var observations []*Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// ListParams returns the unscaled coordinate rows of every observation for a
// run, in insertion order. This is the comparison set for duplicate checks.
func (s *Store) ListParams(runID string) ([][]float64, error) {
	observations, err := s.ListByRun(runID)
	if err != nil {
		return nil, err
	}
	params := make([][]float64, len(observations))
	for i, obs := range observations {
		params[i] = obs.Params
	}
	return params, nil
}

// Count returns the number of observations stored for a run.
func (s *Store) Count(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM observations WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}

// Best returns the observation with the highest objective for a run.
func (s *Store) Best(runID string) (*Observation, error) {
	row := s.db.QueryRow(`
		SELECT observation_id, run_id, round, params_json,
		       objective, utility, is_optimum, created_at
		FROM observations
		WHERE run_id = ?
		ORDER BY objective DESC, created_at ASC
		LIMIT 1`, runID)

	obs, err := scanObservation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no observations for run %s", runID)
		}
		return nil, err
	}
	return obs, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanObservation(row scanner) (*Observation, error) {
	var obs Observation
	var paramsJSON string
	var isOptimum int
	err := row.Scan(
		&obs.ObservationID, &obs.RunID, &obs.Round, &paramsJSON,
		&obs.Objective, &obs.Utility, &isOptimum, &obs.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan observation: %w", err)
	}
	if err := json.Unmarshal([]byte(paramsJSON), &obs.Params); err != nil {
		return nil, fmt.Errorf("unmarshal params for %s: %w", obs.ObservationID, err)
	}
	obs.IsOptimum = isOptimum != 0
	return &obs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
