package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcomes recorded per scene and variable.
const (
	OutcomeExtracted = "extracted"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Run is one invocation of the extract command for a product.
type Run struct {
	ID         string
	Product    string
	StartedAt  time.Time
	FinishedAt time.Time
	Attempted  int
	Succeeded  int
	Failed     int
}

// SceneEvent is the outcome of one variable extraction within a run.
type SceneEvent struct {
	RunID      string
	SceneID    string
	Variable   string
	Outcome    string
	Detail     string
	Duration   time.Duration
	RecordedAt time.Time
}

const timeLayout = time.RFC3339

// BeginRun records the start of a run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, product string) (string, error) {
	id := uuid.NewString()
	err := s.execWithRetry(ctx,
		"INSERT INTO runs (id, product, started_at) VALUES (?, ?, ?)",
		id, product, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run with its final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, attempted, succeeded, failed int) error {
	err := s.execWithRetry(ctx,
		"UPDATE runs SET finished_at = ?, attempted = ?, succeeded = ?, failed = ? WHERE id = ?",
		time.Now().UTC().Format(timeLayout), attempted, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordScene stores the outcome of one scene and variable.
func (s *Store) RecordScene(ctx context.Context, event SceneEvent) error {
	err := s.execWithRetry(ctx,
		`INSERT INTO scene_events (run_id, scene_id, variable, outcome, detail, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.RunID, event.SceneID, event.Variable, event.Outcome, event.Detail,
		event.Duration.Milliseconds(), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record scene event: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs for a product, or across products when
// product is empty.
func (s *Store) RecentRuns(ctx context.Context, product string, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	query := "SELECT id, product, started_at, finished_at, attempted, succeeded, failed FROM runs"
	args := []any{}
	if product != "" {
		query += " WHERE product = ?"
		args = append(args, product)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Product, &started, &finished, &run.Attempted, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse run start: %w", err)
		}
		if finished.Valid {
			if run.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
				return nil, fmt.Errorf("parse run finish: %w", err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunEvents returns the scene events of one run in insertion order.
func (s *Store) RunEvents(ctx context.Context, runID string) ([]SceneEvent, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, scene_id, variable, outcome, detail, duration_ms, recorded_at
		 FROM scene_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scene events: %w", err)
	}
	defer rows.Close()

	var events []SceneEvent
	for rows.Next() {
		var (
			event      SceneEvent
			durationMS int64
			recorded   string
		)
		if err := rows.Scan(&event.RunID, &event.SceneID, &event.Variable, &event.Outcome, &event.Detail, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan scene event: %w", err)
		}
		event.Duration = time.Duration(durationMS) * time.Millisecond
		if event.RecordedAt, err = time.Parse(timeLayout, recorded); err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scene events: %w", err)
	}
	return events, nil
}

// LastRun returns the newest run for a product, or sql.ErrNoRows wrapped as
// a not-found error when the journal has none.
func (s *Store) LastRun(ctx context.Context, product string) (Run, error) {
	runs, err := s.RecentRuns(ctx, product, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("no runs recorded for %q: %w", product, sql.ErrNoRows)
	}
	return runs[0], nil
}

// IsNotFound reports whether an error marks an absent journal record.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
