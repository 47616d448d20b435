// Package runlog persists indexing run history in SQLite so past runs can be
// inspected from the CLI and the HTTP API.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded indexing run.
type Run struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Status      string    `json:"status"` // completed or error
	Forced      bool      `json:"forced"`
	Total       int       `json:"total"`
	Indexed     int       `json:"indexed"`
	Failed      int       `json:"failed"`
	Removed     int       `json:"removed"`
	VectorCount int       `json:"vector_count"`
	Error       string    `json:"error,omitempty"`
}

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Store wraps the SQLite run history database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run log database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging run log: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory run log (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory run log: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('completed','error')),
    forced INTEGER NOT NULL DEFAULT 0,
    total INTEGER NOT NULL DEFAULT 0,
    indexed INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    removed INTEGER NOT NULL DEFAULT 0,
    vector_count INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id, started_at);
`

// Record inserts one finished run. A missing ID is filled in.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, project_id, started_at, finished_at, status, forced,
		                  total, indexed, failed, removed, vector_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProjectID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status,
		boolToInt(run.Forced), run.Total, run.Indexed, run.Failed, run.Removed,
		run.VectorCount, run.Error,
	)
	if err != nil {
		return Run{}, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs for a project, newest first.
func (s *Store) ListRuns(ctx context.Context, projectID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, started_at, finished_at, status, forced,
		       total, indexed, failed, removed, vector_count, error
		FROM runs
		WHERE project_id = ?
		ORDER BY started_at DESC
		LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var forced int
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&forced, &r.Total, &r.Indexed, &r.Failed, &r.Removed, &r.VectorCount, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Forced = forced != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
