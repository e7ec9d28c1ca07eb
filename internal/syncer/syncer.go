// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syncer pushes unresolved tracker rows to the issue tracker. A
// run scans the document, creates one remote issue per row whose issue
// cell is "-", and writes each new number back into its row. Rows are
// handled one at a time; a failed row is reported and the run moves on,
// while a failed write-back stops the run.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/iplixera/nivostack-monorepo/internal/github"
	"github.com/iplixera/nivostack-monorepo/internal/journal"
	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// Errors that end a run.
var (
	ErrWriteFailure   = errors.New("could not write issue number back to tracker")
	ErrSyncInProgress = errors.New("another sync is in progress")
)

// Journal records attempts so a created issue whose write-back was lost
// can be recovered. *journal.Store satisfies it.
type Journal interface {
	BeginRun(ctx context.Context, repo, document string) (string, error)
	FinishRun(ctx context.Context, runID string, sum journal.RunSummary) error
	RecordCreated(ctx context.Context, runID, repo, itemID string, issue int, url string) error
	RecordWritten(ctx context.Context, runID, repo, itemID string, issue int) error
	RecordFailure(ctx context.Context, runID, repo, itemID, msg string) error
	PendingWriteBack(ctx context.Context, repo, document string) (map[string]journal.Pending, error)
}

// OutcomeKind classifies what happened to one item.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeRecovered OutcomeKind = "recovered"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeSkipped   OutcomeKind = "skipped"
)

// Outcome is the result for one item.
type Outcome struct {
	ItemID string
	Kind   OutcomeKind
	Issue  int
	URL    string
	Err    error
}

// Result summarizes a run.
type Result struct {
	Created   int
	Recovered int
	Failed    int
	Skipped   int
	Outcomes  []Outcome
}

// Total returns the number of items processed.
func (r Result) Total() int {
	return r.Created + r.Recovered + r.Failed + r.Skipped
}

// HasFailures reports whether any item failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

func (r *Result) add(o Outcome) {
	switch o.Kind {
	case OutcomeCreated:
		r.Created++
	case OutcomeRecovered:
		r.Recovered++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Engine runs syncs of one tracker document against one repository.
type Engine struct {
	Doc     *tracker.File
	Creator github.IssueCreator

	// Journal may be nil; dry runs never use it.
	Journal Journal

	// Repo is "owner/name", used to scope journal entries.
	Repo string

	// DryRun creates synthetic issues and leaves the document untouched.
	DryRun bool

	// Out receives the per-item trace.
	Out io.Writer
}

// run carries per-run journal state.
type run struct {
	id      string
	pending map[string]journal.Pending
	journal Journal
}

// Run syncs every unresolved item: testing tasks first, then UI changes,
// each in document order. Per-item failures are counted in the Result and
// do not produce an error. The error is non-nil when the document is
// missing, another sync holds the lock, a write-back fails, or ctx ends.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	return e.run(ctx, func(doc *tracker.Document) ([]tracker.Record, error) {
		var records []tracker.Record
		for _, p := range types.Prefixes {
			records = append(records, doc.Unresolved(p)...)
		}
		return records, nil
	})
}

// SyncItem syncs the single item id. An item that already has an issue
// is reported as skipped.
func (e *Engine) SyncItem(ctx context.Context, id string) (Result, error) {
	return e.run(ctx, func(doc *tracker.Document) ([]tracker.Record, error) {
		if doc.Ambiguous(id) {
			return nil, fmt.Errorf("%w: %s", tracker.ErrAmbiguousID, id)
		}
		rec, ok := doc.Find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", tracker.ErrItemNotFound, id)
		}
		if rec.Item.Issue.Resolved() {
			fmt.Fprintf(e.out(), "skipped: %s (already linked to %s)\n", id, rec.Item.Issue)
			return nil, nil
		}
		return []tracker.Record{rec}, nil
	})
}

func (e *Engine) run(ctx context.Context, selectItems func(*tracker.Document) ([]tracker.Record, error)) (Result, error) {
	w := e.out()

	// Dry runs leave nothing behind, not even the sync lock file.
	if !e.DryRun {
		unlock, ok, err := e.Doc.LockSync()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrSyncInProgress
		}
		defer unlock()
	}

	doc, err := e.Doc.Load()
	if err != nil {
		return Result{}, err
	}
	for _, d := range doc.Diagnostics {
		fmt.Fprintf(w, "warning: %s\n", d)
	}

	records, err := selectItems(doc)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "Nothing to sync: every item has a GitHub issue.")
		return Result{}, nil
	}

	if e.DryRun {
		fmt.Fprintf(w, "Dry run: %d item(s), no issues will be created and %s will not change.\n", len(records), e.Doc.Path)
	}
	r := e.beginRun(ctx)

	var result Result
	var runErr error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		outcome, err := e.syncRecord(ctx, r, rec.Item)
		result.add(outcome)
		if err != nil {
			runErr = err
			break
		}
	}

	e.finishRun(r, result)
	fmt.Fprintf(w, "\nSync summary: %d created, %d recovered, %d failed, %d skipped (total: %d)\n",
		result.Created, result.Recovered, result.Failed, result.Skipped, result.Total())
	return result, runErr
}

// syncRecord handles one item. A non-nil error is fatal for the run.
func (e *Engine) syncRecord(ctx context.Context, r *run, item types.TrackerItem) (Outcome, error) {
	w := e.out()

	if p, ok := r.pending[item.ID]; ok {
		fmt.Fprintf(w, "recovering: %s -> #%d (created by an earlier run)\n", item.ID, p.Issue)
		return e.writeBack(ctx, r, item.ID, OutcomeRecovered, github.Issue{Number: p.Issue, URL: p.URL})
	}

	payload := BuildPayload(item)
	fmt.Fprintf(w, "creating: %s %s\n", item.ID, payload.Title)

	issue, err := e.Creator.CreateIssue(ctx, payload)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", item.ID, err)
		r.record(func(j Journal) error { return j.RecordFailure(ctx, r.id, e.Repo, item.ID, err.Error()) }, w)
		return Outcome{ItemID: item.ID, Kind: OutcomeFailed, Err: err}, nil
	}

	if e.DryRun || issue.Synthetic {
		fmt.Fprintf(w, "dry-run: %s -> #%d (not written)\n", item.ID, issue.Number)
		return Outcome{ItemID: item.ID, Kind: OutcomeCreated, Issue: issue.Number}, nil
	}

	r.record(func(j Journal) error {
		return j.RecordCreated(ctx, r.id, e.Repo, item.ID, issue.Number, issue.URL)
	}, w)
	return e.writeBack(ctx, r, item.ID, OutcomeCreated, issue)
}

// writeBack stores issue.Number in the row of id under the document lock.
func (e *Engine) writeBack(ctx context.Context, r *run, id string, kind OutcomeKind, issue github.Issue) (Outcome, error) {
	w := e.out()
	out := Outcome{ItemID: id, Kind: kind, Issue: issue.Number, URL: issue.URL}

	// The remote issue exists; record it even if ctx was cancelled meanwhile.
	err := e.Doc.Update(context.WithoutCancel(ctx), func(text string) (string, error) {
		return tracker.SetIssue(text, id, types.IssueRef(issue.Number))
	})
	switch {
	case err == nil:
	case errors.Is(err, tracker.ErrAlreadyResolved):
		fmt.Fprintf(w, "warning: %s was linked to an issue meanwhile; #%d left unreferenced\n", id, issue.Number)
		r.record(func(j Journal) error { return j.RecordWritten(ctx, r.id, e.Repo, id, issue.Number) }, w)
		out.Kind = OutcomeSkipped
		return out, nil
	default:
		fmt.Fprintf(w, "failed:  %s (issue #%d created but not recorded: %v)\n", id, issue.Number, err)
		out.Kind = OutcomeFailed
		out.Err = err
		return out, fmt.Errorf("%w: %s -> #%d: %w", ErrWriteFailure, id, issue.Number, err)
	}

	r.record(func(j Journal) error { return j.RecordWritten(ctx, r.id, e.Repo, id, issue.Number) }, w)
	if issue.URL != "" {
		fmt.Fprintf(w, "%s: %s -> #%d %s\n", kind, id, issue.Number, issue.URL)
	} else {
		fmt.Fprintf(w, "%s: %s -> #%d\n", kind, id, issue.Number)
	}
	return out, nil
}

// beginRun opens a journal run. Journal errors are reported and disable
// journaling for the rest of the run.
func (e *Engine) beginRun(ctx context.Context) *run {
	r := &run{}
	if e.DryRun || e.Journal == nil {
		return r
	}
	w := e.out()

	document := e.documentKey()
	id, err := e.Journal.BeginRun(ctx, e.Repo, document)
	if err != nil {
		fmt.Fprintf(w, "warning: journal unavailable: %v\n", err)
		return r
	}
	pending, err := e.Journal.PendingWriteBack(ctx, e.Repo, document)
	if err != nil {
		fmt.Fprintf(w, "warning: journal unavailable: %v\n", err)
		return r
	}
	r.id, r.pending, r.journal = id, pending, e.Journal
	return r
}

// documentKey identifies the document in the journal.
func (e *Engine) documentKey() string {
	if abs, err := filepath.Abs(e.Doc.Path); err == nil {
		return abs
	}
	return e.Doc.Path
}

func (e *Engine) finishRun(r *run, result Result) {
	r.record(func(j Journal) error {
		return j.FinishRun(context.Background(), r.id, journal.RunSummary{
			Created:   result.Created,
			Recovered: result.Recovered,
			Failed:    result.Failed,
		})
	}, e.out())
}

func (r *run) record(fn func(Journal) error, w io.Writer) {
	if r.journal == nil {
		return
	}
	if err := fn(r.journal); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}

func (e *Engine) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}
