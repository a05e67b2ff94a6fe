package resultstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ecanvass/hypergeom"
)

// timeFormat fixes the stored timestamp layout. RFC 3339 with
// nanoseconds sorts lexicographically within a run's lifetime.
const timeFormat = time.RFC3339Nano

// Run is one batch scoring run.
type Run struct {
	// ID is the run's UUID.
	ID string

	// StartedAt and FinishedAt bound the run. FinishedAt is zero for
	// a run that never finished.
	StartedAt  time.Time
	FinishedAt time.Time

	// ConfigJSON is the engine configuration the run used.
	ConfigJSON string

	// Queries counts scored input lines, Failures the lines that
	// errored.
	Queries  int64
	Failures int64
}

// ScoreRow is one scored input line.
type ScoreRow struct {
	RunID  string
	LineID string

	// Query is the drawing that was scored.
	Query hypergeom.Query

	// Score is the full reporting-precision decimal, as text.
	Score string

	// Split is the (coefficient, exponent) form of Score.
	Split hypergeom.Split

	// Algorithm names the strategy that served the query.
	Algorithm string
}

// BeginRun records a run before any scores are written. Scores
// reference their run, so this must land first.
func (s *Store) BeginRun(ctx context.Context, id string, startedAt time.Time, configJSON string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, config_json)
		VALUES (?, ?, ?)
	`, id, startedAt.UTC().Format(timeFormat), configJSON)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stamps the end of a run with its totals.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, queries, failures int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, queries = ?, failures = ?
		WHERE id = ?
	`, finishedAt.UTC().Format(timeFormat), queries, failures, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %q not found", id)
	}
	return nil
}

// WriteScore inserts one score row. Duplicate (run, line) pairs are
// silently ignored so replayed batches stay idempotent.
func (s *Store) WriteScore(ctx context.Context, row ScoreRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores
		(run_id, line_id, k, m, sample_n, n, score, coefficient, exponent, algorithm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, line_id) DO NOTHING
	`,
		row.RunID,
		row.LineID,
		row.Query.K,
		row.Query.M,
		row.Query.Sample,
		row.Query.N,
		row.Score,
		row.Split.Coefficient,
		row.Split.Exponent,
		row.Algorithm,
	)
	if err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return nil
}
