// Package history keeps a record of link-check runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/uetop/codify-document/internal/foundation/errors"
)

// Status summarises a run.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusWarnings Status = "warnings"
	StatusFailed   Status = "failed"
)

// StatusFor derives the run status from finding counts.
func StatusFor(errorCount, warningCount int) Status {
	switch {
	case errorCount > 0:
		return StatusFailed
	case warningCount > 0:
		return StatusWarnings
	default:
		return StatusPassed
	}
}

// Run is one recorded check.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Snapshot  string        `json:"snapshot"`
	Pages     int           `json:"pages"`
	Errors    int           `json:"errors"`
	Warnings  int           `json:"warnings"`
	Status    Status        `json:"status"`
}

// NewRun starts a run with a fresh ID.
func NewRun(snapshot string, startedAt time.Time) *Run {
	return &Run{ID: uuid.NewString(), StartedAt: startedAt, Snapshot: snapshot}
}

// Store persists runs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use ":memory:" for an
// in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryStore, "failed to create history directory").
				WithContext("path", path).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "could not open history database").
			WithContext("path", path).Build()
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryStore, "failed to initialize history schema").
			WithContext("path", path).Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		pages INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_check_runs_started_at ON check_runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts a run. A missing ID or status is filled in.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = StatusFor(run.Errors, run.Warnings)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO check_runs (id, started_at, duration_ms, snapshot, pages, errors, warnings, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.Snapshot,
		run.Pages, run.Errors, run.Warnings, string(run.Status),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "failed to record check run").
			WithContext("run_id", run.ID).Build()
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, snapshot, pages, errors, warnings, status
		FROM check_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "failed to query check runs").Build()
	}
	defer func() { _ = rows.Close() }()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		var startedMS, durationMS int64
		var status string
		if err := rows.Scan(&r.ID, &startedMS, &durationMS, &r.Snapshot, &r.Pages, &r.Errors, &r.Warnings, &status); err != nil {
			return nil, errors.WrapError(err, errors.CategoryStore, "failed to scan check run").Build()
		}
		r.StartedAt = time.UnixMilli(startedMS).UTC()
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Status = Status(status)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "failed to iterate check runs").Build()
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
