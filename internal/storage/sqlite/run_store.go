package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/geowatch-data/landcover.report/internal/timeutil"
)

// AnalysisRun records one invocation of the detection pipeline: the scene
// pair it compared, the tuning it ran with, and how many change records
// it produced.
type AnalysisRun struct {
	RunID        string  `json:"run_id"`
	Label        string  `json:"label"`
	BeforeSource string  `json:"before_source"`
	AfterSource  string  `json:"after_source"`
	Threshold    float64 `json:"threshold"`
	MinArea      int     `json:"min_area"`
	RecordCount  int     `json:"record_count"`
	CreatedAt    int64   `json:"created_at"`
}

// RunStore provides persistence for analysis runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO analysis_runs (
				run_id, label, before_source, after_source,
				threshold, min_area, record_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Label, run.BeforeSource, run.AfterSource,
			run.Threshold, run.MinArea, run.RecordCount, run.CreatedAt,
		)
		return err
	})
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*AnalysisRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, label, before_source, after_source,
		       threshold, min_area, record_count, created_at
		FROM analysis_runs
		WHERE run_id = ?`, runID)

	var r AnalysisRun
	err := row.Scan(
		&r.RunID, &r.Label, &r.BeforeSource, &r.AfterSource,
		&r.Threshold, &r.MinArea, &r.RecordCount, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &r, nil
}

// List returns runs ordered by creation time descending, up to limit.
// A non-positive limit returns all runs.
func (s *RunStore) List(limit int) ([]*AnalysisRun, error) {
	query := `
		SELECT run_id, label, before_source, after_source,
		       threshold, min_area, record_count, created_at
		FROM analysis_runs
		ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		var r AnalysisRun
		err := rows.Scan(
			&r.RunID, &r.Label, &r.BeforeSource, &r.AfterSource,
			&r.Threshold, &r.MinArea, &r.RecordCount, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// UpdateRecordCount sets the record count once a run's records are stored.
func (s *RunStore) UpdateRecordCount(runID string, count int) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(
			`UPDATE analysis_runs SET record_count = ? WHERE run_id = ?`,
			count, runID,
		)
		if err != nil {
			return fmt.Errorf("update record count: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}
