// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func beginRun(t *testing.T, s *Store, repo string) string {
	t.Helper()
	id, err := s.BeginRun(context.Background(), repo, "TRACKER.md")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// --- schema tests ---

func TestOpenCreatesSchema(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"runs", "attempts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("journal directory not created: %v", err)
	}
}

// --- run and attempt tests ---

func TestBeginRunIDsAreUnique(t *testing.T) {
	store := testStore(t)
	a := beginRun(t, store, "acme/app")
	b := beginRun(t, store, "acme/app")
	if a == b || a == "" {
		t.Errorf("run ids %q and %q should be distinct and non-empty", a, b)
	}
}

func TestFinishRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := beginRun(t, store, "acme/app")

	if err := store.FinishRun(ctx, id, RunSummary{Created: 2, Recovered: 1, Failed: 3}); err != nil {
		t.Fatal(err)
	}

	var created, recovered, failed int
	var finished sql.NullString
	err := store.db.QueryRow(`SELECT created, recovered, failed, finished_at FROM runs WHERE id = ?`, id).
		Scan(&created, &recovered, &failed, &finished)
	if err != nil {
		t.Fatal(err)
	}
	if created != 2 || recovered != 1 || failed != 3 {
		t.Errorf("got counts %d/%d/%d, want 2/1/3", created, recovered, failed)
	}
	if !finished.Valid || finished.String == "" {
		t.Error("finished_at not set")
	}
}

func TestPendingWriteBack(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	run := beginRun(t, store, "acme/app")

	mustRecord(t, store.RecordCreated(ctx, run, "acme/app", "TEST-001", 11, "https://github.com/acme/app/issues/11"))
	mustRecord(t, store.RecordWritten(ctx, run, "acme/app", "TEST-001", 11))
	mustRecord(t, store.RecordCreated(ctx, run, "acme/app", "TEST-002", 12, "https://github.com/acme/app/issues/12"))
	mustRecord(t, store.RecordFailure(ctx, run, "acme/app", "UI-001", "HTTP 500"))
	mustRecord(t, store.RecordCreated(ctx, run, "acme/other", "UI-002", 5, ""))

	pending, err := store.PendingWriteBack(ctx, "acme/app", "TRACKER.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1: %v", len(pending), pending)
	}
	p, ok := pending["TEST-002"]
	if !ok || p.Issue != 12 || p.URL != "https://github.com/acme/app/issues/12" {
		t.Errorf("unexpected pending entry %+v", p)
	}

	// Writing it back clears it.
	mustRecord(t, store.RecordWritten(ctx, run, "acme/app", "TEST-002", 12))
	pending, err = store.PendingWriteBack(ctx, "acme/app", "TRACKER.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending after write-back, want 0", len(pending))
	}
}

func TestPendingWriteBackPerDocument(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	runA, err := store.BeginRun(ctx, "acme/app", "/work/a/TRACKER.md")
	if err != nil {
		t.Fatal(err)
	}
	runB, err := store.BeginRun(ctx, "acme/app", "/work/b/TRACKER.md")
	if err != nil {
		t.Fatal(err)
	}
	mustRecord(t, store.RecordCreated(ctx, runA, "acme/app", "TEST-001", 500, ""))
	mustRecord(t, store.RecordCreated(ctx, runB, "acme/app", "TEST-001", 600, ""))
	// A written entry in document B does not clear document A's entry.
	mustRecord(t, store.RecordWritten(ctx, runB, "acme/app", "TEST-001", 600))

	tests := []struct {
		document string
		want     int
	}{
		{"/work/a/TRACKER.md", 500},
		{"/work/b/TRACKER.md", 0},
		{"/work/c/TRACKER.md", 0},
	}
	for _, tt := range tests {
		pending, err := store.PendingWriteBack(ctx, "acme/app", tt.document)
		if err != nil {
			t.Fatal(err)
		}
		if got := pending["TEST-001"].Issue; got != tt.want {
			t.Errorf("%s: pending issue = %d, want %d", tt.document, got, tt.want)
		}
		if tt.want == 0 && len(pending) != 0 {
			t.Errorf("%s: got %d pending, want 0", tt.document, len(pending))
		}
	}
}

func mustRecord(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// --- history and export tests ---

func TestHistoryNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	old := now
	now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }
	defer func() { now = old }()

	run := beginRun(t, store, "acme/app")
	mustRecord(t, store.RecordCreated(ctx, run, "acme/app", "TEST-001", 1, ""))
	mustRecord(t, store.RecordWritten(ctx, run, "acme/app", "TEST-001", 1))
	mustRecord(t, store.RecordFailure(ctx, run, "acme/app", "UI-001", "timeout"))

	entries, err := store.History(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ItemID != "UI-001" || entries[0].State != StateFailed || entries[0].Error != "timeout" {
		t.Errorf("unexpected newest entry %+v", entries[0])
	}
	if entries[1].State != StateWritten {
		t.Errorf("second entry state = %q, want %q", entries[1].State, StateWritten)
	}
	if !entries[0].At.After(entries[1].At) {
		t.Errorf("timestamps not descending: %v then %v", entries[0].At, entries[1].At)
	}
}

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	run := beginRun(t, store, "acme/app")
	mustRecord(t, store.RecordCreated(ctx, run, "acme/app", "TEST-001", 1, "u"))

	var buf bytes.Buffer
	if err := store.ExportYAML(ctx, &buf, 0); err != nil {
		t.Fatal(err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != run {
		t.Errorf("unexpected export %+v", entries)
	}
}

func TestExportJSONEmpty(t *testing.T) {
	store := testStore(t)

	var buf bytes.Buffer
	if err := store.ExportJSON(context.Background(), &buf, 0); err != nil {
		t.Fatal(err)
	}
	var entries []Entry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("want empty array, got %s", buf.String())
	}
}
