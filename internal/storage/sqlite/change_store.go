package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/geometry"
	"github.com/geowatch-data/landcover.report/internal/timeutil"
)

// StoredChange is a change record as persisted, tagged with the run that
// produced it. Geometry and per-index spectral values are stored as JSON.
type StoredChange struct {
	RecordID        string              `json:"record_id"`
	RunID           string              `json:"run_id"`
	Type            classify.ChangeType `json:"type"`
	Confidence      float64             `json:"confidence"`
	Alert           classify.AlertLevel `json:"alert_level"`
	Description     string              `json:"description"`
	Area            float64             `json:"area"`
	AreaPixels      float64             `json:"area_pixels"`
	Centroid        [2]float64          `json:"centroid"`
	IsGeoreferenced bool                `json:"is_georeferenced"`
	Geometry        *geometry.Geometry  `json:"geometry,omitempty"`
	Spectral        map[string]float64  `json:"spectral,omitempty"`
	CreatedAt       int64               `json:"created_at"`
}

// ChangeStore provides persistence for change records.
type ChangeStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewChangeStore creates a new ChangeStore.
func NewChangeStore(db *sql.DB) *ChangeStore {
	return &ChangeStore{db: db, clock: timeutil.RealClock{}}
}

// InsertRecords persists all records from one detection run in a single
// transaction. Records keep the IDs assigned by the geometry builder.
func (s *ChangeStore) InsertRecords(runID string, records []*geometry.ChangeRecord) error {
	now := s.clock.Now().UnixNano()

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin insert records: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO change_records (
				record_id, run_id, change_type, confidence, alert_level,
				description, area, area_pixels, centroid_x, centroid_y,
				is_georeferenced, geometry_json, spectral_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			id := rec.ID
			if id == "" {
				id = uuid.New().String()
			}
			geomJSON, err := json.Marshal(rec.Geometry)
			if err != nil {
				return fmt.Errorf("marshal geometry: %w", err)
			}
			var spectralJSON interface{}
			if len(rec.Spectral) > 0 {
				b, err := json.Marshal(rec.Spectral)
				if err != nil {
					return fmt.Errorf("marshal spectral deltas: %w", err)
				}
				spectralJSON = string(b)
			}
			_, err = stmt.Exec(
				id, runID, string(rec.Type), rec.Confidence, string(rec.Alert),
				rec.Description, rec.Area, rec.AreaPixels,
				rec.Centroid[0], rec.Centroid[1],
				rec.IsGeoreferenced, string(geomJSON), spectralJSON, now,
			)
			if err != nil {
				return fmt.Errorf("insert record %s: %w", id, err)
			}
		}

		return tx.Commit()
	})
}

// Get returns a single stored change by record ID.
func (s *ChangeStore) Get(recordID string) (*StoredChange, error) {
	row := s.db.QueryRow(`
		SELECT record_id, run_id, change_type, confidence, alert_level,
		       description, area, area_pixels, centroid_x, centroid_y,
		       is_georeferenced, geometry_json, spectral_json, created_at
		FROM change_records
		WHERE record_id = ?`, recordID)

	c, err := scanChange(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("change record %s not found", recordID)
		}
		return nil, err
	}
	return c, nil
}

// ListByRun returns all changes for a run, largest area first.
func (s *ChangeStore) ListByRun(runID string) ([]*StoredChange, error) {
	rows, err := s.db.Query(`
		SELECT record_id, run_id, change_type, confidence, alert_level,
		       description, area, area_pixels, centroid_x, centroid_y,
		       is_georeferenced, geometry_json, spectral_json, created_at
		FROM change_records
		WHERE run_id = ?
		ORDER BY area DESC, record_id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []*StoredChange
	for rows.Next() {
		c, err := scanChange(rows.Scan)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// ListByType returns changes of one change type across all runs, newest
// first, up to limit. A non-positive limit returns all matches.
func (s *ChangeStore) ListByType(changeType classify.ChangeType, limit int) ([]*StoredChange, error) {
	query := `
		SELECT record_id, run_id, change_type, confidence, alert_level,
		       description, area, area_pixels, centroid_x, centroid_y,
		       is_georeferenced, geometry_json, spectral_json, created_at
		FROM change_records
		WHERE change_type = ?
		ORDER BY created_at DESC`
	args := []interface{}{string(changeType)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query changes by type: %w", err)
	}
	defer rows.Close()

	var changes []*StoredChange
	for rows.Next() {
		c, err := scanChange(rows.Scan)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// DeleteByRun removes all change records belonging to a run.
func (s *ChangeStore) DeleteByRun(runID string) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`DELETE FROM change_records WHERE run_id = ?`, runID)
		return err
	})
}

// scanChange scans one change_records row via the given Scan function,
// shared between Get and the list queries.
func scanChange(scan func(dest ...interface{}) error) (*StoredChange, error) {
	var c StoredChange
	var changeType, alert string
	var geomStr, spectralStr sql.NullString
	err := scan(
		&c.RecordID, &c.RunID, &changeType, &c.Confidence, &alert,
		&c.Description, &c.Area, &c.AreaPixels,
		&c.Centroid[0], &c.Centroid[1],
		&c.IsGeoreferenced, &geomStr, &spectralStr, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan change row: %w", err)
	}
	c.Type = classify.ChangeType(changeType)
	c.Alert = classify.AlertLevel(alert)
	if geomStr.Valid && geomStr.String != "" {
		var g geometry.Geometry
		if err := json.Unmarshal([]byte(geomStr.String), &g); err != nil {
			return nil, fmt.Errorf("unmarshal geometry for %s: %w", c.RecordID, err)
		}
		c.Geometry = &g
	}
	if spectralStr.Valid && spectralStr.String != "" {
		if err := json.Unmarshal([]byte(spectralStr.String), &c.Spectral); err != nil {
			return nil, fmt.Errorf("unmarshal spectral deltas for %s: %w", c.RecordID, err)
		}
	}
	return &c, nil
}
