package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetRun loads one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var started string
	var finished sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, config_json, queries, failures
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &started, &finished, &run.ConfigJSON, &run.Queries, &run.Failures)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	if run.StartedAt, err = time.Parse(timeFormat, started); err != nil {
		return Run{}, fmt.Errorf("get run: started_at: %w", err)
	}
	if finished.Valid {
		if run.FinishedAt, err = time.Parse(timeFormat, finished.String); err != nil {
			return Run{}, fmt.Errorf("get run: finished_at: %w", err)
		}
	}
	return run, nil
}

// Scores loads a run's score rows ordered by ascending magnitude, so
// the strongest outliers come first.
func (s *Store) Scores(ctx context.Context, runID string) ([]ScoreRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, line_id, k, m, sample_n, n, score, coefficient, exponent, algorithm
		FROM scores
		WHERE run_id = ?
		ORDER BY exponent ASC, coefficient ASC, line_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		err := rows.Scan(
			&r.RunID,
			&r.LineID,
			&r.Query.K,
			&r.Query.M,
			&r.Query.Sample,
			&r.Query.N,
			&r.Score,
			&r.Split.Coefficient,
			&r.Split.Exponent,
			&r.Algorithm,
		)
		if err != nil {
			return nil, fmt.Errorf("scores: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	return out, nil
}
