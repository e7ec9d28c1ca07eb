// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

const trackerText = `# Tracker

## Testing Tasks

| ID | Title | Category | Priority | Status | GitHub Issue | Notes |
|----|-------|----------|----------|--------|--------------|-------|
| TEST-001 | Login flow | Integration | P1 | :white_circle: Not Started | - | check login |
| TEST-002 | Push tokens | Mobile | P2 | :green_circle: Done | #41 | |

## UI Changes

| ID | Title | Component | Priority | Status | GitHub Issue | Notes |
|----|-------|-----------|----------|--------|--------------|-------|
| UI-001 | Header spacing | Dashboard | P3 | :large_blue_circle: In Progress | - | |
`

func writeTracker(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TRACKER.md")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	t.Setenv("TRACKER_SYNC_JOURNAL_PATH", filepath.Join(t.TempDir(), "journal.db"))
	return path
}

// execute runs the root command with args and returns combined output.
// Flag values are reset afterwards so runs do not leak into each other.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { resetFlags(rootCmd) })
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestAddIssueNoSync(t *testing.T) {
	path := writeTracker(t, trackerText)

	out, err := execute(t, "--tracker", path, "add-issue", "testing", "Webhook retries", "--priority", "P0", "--notes", "retry 3x", "--no-sync")
	require.NoError(t, err)
	assert.Contains(t, out, "added: TEST-003 Webhook retries (Integration, P0)")

	doc, err := tracker.NewFile(path, 0).Load()
	require.NoError(t, err)
	rec, ok := doc.Find("TEST-003")
	require.True(t, ok)
	assert.Equal(t, "Integration", rec.Item.Classifier)
	assert.Equal(t, types.StatusNotStarted, rec.Item.Status)
	assert.False(t, rec.Item.Issue.Resolved())
	assert.Equal(t, "retry 3x", rec.Item.Notes)
}

func TestAddIssueUIDefaults(t *testing.T) {
	path := writeTracker(t, trackerText)

	_, err := execute(t, "--tracker", path, "add-issue", "ui", "Footer links", "--no-sync")
	require.NoError(t, err)

	doc, err := tracker.NewFile(path, 0).Load()
	require.NoError(t, err)
	rec, ok := doc.Find("UI-002")
	require.True(t, ok)
	assert.Equal(t, "Dashboard", rec.Item.Classifier)
	assert.Equal(t, "P1", rec.Item.Priority)
}

func TestAddIssueErrors(t *testing.T) {
	path := writeTracker(t, trackerText)

	_, err := execute(t, "--tracker", path, "add-issue", "docs", "Title", "--no-sync")
	assert.Error(t, err)

	_, err = execute(t, "--tracker", path, "add-issue", "testing", "  ", "--no-sync")
	assert.ErrorContains(t, err, "title is required")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, trackerText, string(data))
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		status string
		id     string
		want   types.Status
	}{
		{"by id", "TEST-001", "wip", "TEST-001", types.StatusInProgress},
		{"lower-case id", "ui-001", "finished", "UI-001", types.StatusDone},
		{"by issue", "#41", "stuck", "TEST-002", types.StatusBlocked},
		{"bare issue number", "41", "to do", "TEST-002", types.StatusNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTracker(t, trackerText)

			out, err := execute(t, "--tracker", path, "update-status", tt.ref, tt.status)
			require.NoError(t, err)
			assert.Contains(t, out, "updated: "+tt.id)

			doc, err := tracker.NewFile(path, 0).Load()
			require.NoError(t, err)
			rec, ok := doc.Find(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.Item.Status)
		})
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	path := writeTracker(t, trackerText)

	_, err := execute(t, "--tracker", path, "update-status", "TEST-999", "done")
	assert.ErrorIs(t, err, tracker.ErrItemNotFound)

	_, err = execute(t, "--tracker", path, "update-status", "#7", "done")
	assert.ErrorIs(t, err, tracker.ErrItemNotFound)

	_, err = execute(t, "--tracker", path, "update-status", "TEST-001", "someday")
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, trackerText, string(data))
}

func TestSyncDryRun(t *testing.T) {
	path := writeTracker(t, trackerText)

	out, err := execute(t, "--tracker", path, "sync", "--test")
	require.NoError(t, err)
	assert.Contains(t, out, "dry-run: TEST-001 -> #")
	assert.Contains(t, out, "dry-run: UI-001 -> #")
	assert.Contains(t, out, "2 created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, trackerText, string(data))
}

func TestSyncMissingTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")

	_, err := execute(t, "--tracker", path, "sync", "--dry-run")
	assert.ErrorIs(t, err, tracker.ErrDocumentNotFound)
}

func TestListFormats(t *testing.T) {
	path := writeTracker(t, trackerText)

	out, err := execute(t, "--tracker", path, "list", "--unresolved", "--format", "json")
	require.NoError(t, err)
	var items []types.TrackerItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "TEST-001", items[0].ID)
	assert.Equal(t, "UI-001", items[1].ID)

	out, err = execute(t, "--tracker", path, "list", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: TEST-002")

	out, err = execute(t, "--tracker", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TEST-002")
	assert.Contains(t, out, "#41")

	_, err = execute(t, "--tracker", path, "list", "--format", "xml")
	assert.Error(t, err)
}

func TestRenderTableEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderItems(&out, nil, "table"))
	assert.Equal(t, "No items.\n", out.String())

	out.Reset()
	require.NoError(t, renderItems(&out, nil, "json"))
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestValidate(t *testing.T) {
	path := writeTracker(t, trackerText)
	out, err := execute(t, "--tracker", path, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 item(s), no problems")

	broken := strings.Replace(trackerText, "| #41 |", "| 41 |", 1)
	path = writeTracker(t, broken)
	out, err = execute(t, "--tracker", path, "validate")
	assert.Error(t, err)
	assert.Contains(t, out, "TEST-002")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tracker-sync dev\n", out)

	out, err = execute(t, "--tracker", "docs/OTHER.md", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "go:         go")
	assert.Contains(t, out, "repository: iplixera/nivostack-monorepo")
	assert.Contains(t, out, "tracker:    docs/OTHER.md")
}
