// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records sync runs and per-item attempts in a local
// SQLite database. An issue journaled as created but never written back to
// the tracker document is pending; the next run writes that number back
// instead of creating a second issue.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Attempt states.
const (
	StateCreated = "created"
	StateWritten = "written"
	StateFailed  = "failed"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating its
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			document TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			created INTEGER NOT NULL DEFAULT 0,
			recovered INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			repo TEXT NOT NULL,
			item_id TEXT NOT NULL,
			state TEXT NOT NULL,
			issue INTEGER NOT NULL DEFAULT 0,
			url TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_item ON attempts(repo, item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(repo, document)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunSummary holds the counts stored when a run finishes.
type RunSummary struct {
	Created   int
	Recovered int
	Failed    int
}

// BeginRun registers a new run of document against repo and returns its
// id. document should be an absolute path; pending write-backs are scoped
// to it.
func (s *Store) BeginRun(ctx context.Context, repo, document string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, repo, document, started_at) VALUES (?, ?, ?, ?)`,
		id, repo, document, stamp(now()),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// FinishRun stores the run's counts and end time.
func (s *Store) FinishRun(ctx context.Context, runID string, sum RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, created = ?, recovered = ?, failed = ? WHERE id = ?`,
		stamp(now()), sum.Created, sum.Recovered, sum.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	return nil
}

// RecordCreated records that issue was created remotely for itemID.
func (s *Store) RecordCreated(ctx context.Context, runID, repo, itemID string, issue int, url string) error {
	return s.record(ctx, runID, repo, itemID, StateCreated, issue, url, "")
}

// RecordWritten records that issue was written back into the document.
func (s *Store) RecordWritten(ctx context.Context, runID, repo, itemID string, issue int) error {
	return s.record(ctx, runID, repo, itemID, StateWritten, issue, "", "")
}

// RecordFailure records a failed attempt for itemID.
func (s *Store) RecordFailure(ctx context.Context, runID, repo, itemID, msg string) error {
	return s.record(ctx, runID, repo, itemID, StateFailed, 0, "", msg)
}

func (s *Store) record(ctx context.Context, runID, repo, itemID, state string, issue int, url, msg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, repo, item_id, state, issue, url, error, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, repo, itemID, state, issue, url, msg, stamp(now()),
	)
	if err != nil {
		return fmt.Errorf("journaling %s %s: %w", state, itemID, err)
	}
	return nil
}

// Pending is an issue created remotely whose number never reached the
// document.
type Pending struct {
	ItemID string
	Issue  int
	URL    string
}

// PendingWriteBack returns, per item id, the most recent issue created in
// repo for document that has no matching written entry. Runs against other
// documents are ignored even when they share the repo.
func (s *Store) PendingWriteBack(ctx context.Context, repo, document string) (map[string]Pending, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.item_id, a.issue, a.url FROM attempts a
		JOIN runs r ON r.id = a.run_id
		WHERE a.repo = ? AND r.document = ? AND a.state = ?
		  AND NOT EXISTS (
			SELECT 1 FROM attempts b
			JOIN runs rb ON rb.id = b.run_id
			WHERE b.repo = a.repo AND rb.document = r.document
			  AND b.item_id = a.item_id AND b.issue = a.issue AND b.state = ?
		  )
		ORDER BY a.rowid`,
		repo, document, StateCreated, StateWritten,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending write-backs: %w", err)
	}
	defer rows.Close()

	pending := make(map[string]Pending)
	for rows.Next() {
		var p Pending
		if err := rows.Scan(&p.ItemID, &p.Issue, &p.URL); err != nil {
			return nil, fmt.Errorf("scanning pending write-back: %w", err)
		}
		pending[p.ItemID] = p
	}
	return pending, rows.Err()
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
