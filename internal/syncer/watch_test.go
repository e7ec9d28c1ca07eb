// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

func TestWatchSyncsNewRows(t *testing.T) {
	creator := &fakeCreator{}
	e, _ := newEngine(t, creator)
	e.Out = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx, 20*time.Millisecond) }()

	require.Eventually(t, func() bool { return len(creator.calls()) == 3 }, 5*time.Second, 10*time.Millisecond)

	// Add a row the way add-issue does.
	err := e.Doc.Update(context.Background(), func(text string) (string, error) {
		out, _, err := tracker.AddItem(text, tracker.NewItem{Prefix: types.PrefixUI, Title: "Footer", Classifier: "Dashboard", Priority: "P2"})
		return out, err
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return slices.Contains(creator.calls(), "UI-002")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDocument(t *testing.T) {
	e, _ := newEngine(t, &fakeCreator{})
	require.NoError(t, os.Remove(e.Doc.Path))

	err := e.Watch(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, tracker.ErrDocumentNotFound)
}

func TestRelevant(t *testing.T) {
	target := "/work/TRACKER.md"
	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}, target))
	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}, target))
	assert.False(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}, target))
	assert.False(t, relevant(fsnotify.Event{Name: "/work/TRACKER.md.lock", Op: fsnotify.Write}, target))
}
