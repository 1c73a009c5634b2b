// Package sqlite persists batch evaluation results so report tooling can
// query runs after the fact.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gaitlab/stride.report/internal/eval"
	"github.com/gaitlab/stride.report/internal/monitoring"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the results database.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the results database at path and applies the
// embedded schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	monitoring.Logf("initialized results database at %s", path)
	return &Store{db}, nil
}

// CreateRun registers a new batch run and returns its id.
func (s *Store) CreateRun(dataRoot string, tolerance float64) (string, error) {
	runID := uuid.NewString()
	_, err := s.Exec(
		"INSERT INTO runs (run_id, data_root, tolerance) VALUES (?, ?, ?)",
		runID, dataRoot, tolerance,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// InsertRecord stores every per-detector report of one evaluation record.
func (s *Store) InsertRecord(runID string, rec eval.EvaluationRecord) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			run_id, trial, sensor, algorithm,
			execution_time_seconds, detected_step_count, step_rate,
			step_timestamps, precision, recall, f1,
			step_count_error, mse_penalty, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, report := range rec.Reports {
		steps, err := json.Marshal(report.StepTimestamps)
		if err != nil {
			return fmt.Errorf("marshal steps: %w", err)
		}
		var precision, recall, f1, msePenalty sql.NullFloat64
		var countErr sql.NullInt64
		if m := report.Metrics; m != nil {
			precision = sql.NullFloat64{Float64: m.Precision, Valid: true}
			recall = sql.NullFloat64{Float64: m.Recall, Valid: true}
			f1 = sql.NullFloat64{Float64: m.F1, Valid: true}
			msePenalty = sql.NullFloat64{Float64: m.MSEPenalty, Valid: true}
			countErr = sql.NullInt64{Int64: int64(m.StepCountError), Valid: true}
		}
		if _, err := stmt.Exec(
			runID, rec.Trial, rec.Sensor, report.Algorithm,
			report.ExecutionTimeSeconds, report.DetectedStepCount, report.StepRate,
			string(steps), precision, recall, f1,
			countErr, msePenalty, nullString(report.Err),
		); err != nil {
			return fmt.Errorf("insert result for %s/%s/%s: %w",
				rec.Trial, rec.Sensor, report.Algorithm, err)
		}
	}
	return tx.Commit()
}

// AlgorithmAggregate summarises one algorithm across every scored result of
// a run.
type AlgorithmAggregate struct {
	Algorithm            string
	Results              int
	MeanPrecision        float64
	MeanRecall           float64
	MeanF1               float64
	MeanMSEPenalty       float64
	MeanExecutionSeconds float64
}

// AggregateByAlgorithm averages metrics per algorithm over one run,
// considering only results that carry metrics and no error.
func (s *Store) AggregateByAlgorithm(runID string) ([]AlgorithmAggregate, error) {
	rows, err := s.Query(`
		SELECT algorithm, COUNT(*),
		       AVG(precision), AVG(recall), AVG(f1),
		       AVG(mse_penalty), AVG(execution_time_seconds)
		FROM results
		WHERE run_id = ? AND error IS NULL AND precision IS NOT NULL
		GROUP BY algorithm
		ORDER BY algorithm
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []AlgorithmAggregate
	for rows.Next() {
		var a AlgorithmAggregate
		if err := rows.Scan(
			&a.Algorithm, &a.Results,
			&a.MeanPrecision, &a.MeanRecall, &a.MeanF1,
			&a.MeanMSEPenalty, &a.MeanExecutionSeconds,
		); err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
