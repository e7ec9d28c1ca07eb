// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

func writeDoc(t *testing.T, text string) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TRACKER.md")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return NewFile(path, 500*time.Millisecond)
}

func TestFileReadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing.md"), 0)

	_, err := f.Read()
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = f.Load()
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	err = f.Update(context.Background(), func(s string) (string, error) { return s, nil })
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileUpdate(t *testing.T) {
	f := writeDoc(t, sampleTracker)

	err := f.Update(context.Background(), func(text string) (string, error) {
		return SetIssue(text, "TEST-001", 5)
	})
	require.NoError(t, err)

	doc, err := f.Load()
	require.NoError(t, err)
	rec, ok := doc.Find("TEST-001")
	require.True(t, ok)
	assert.Equal(t, types.IssueRef(5), rec.Item.Issue)

	info, err := os.Stat(f.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileUpdateErrorLeavesFileAlone(t *testing.T) {
	f := writeDoc(t, sampleTracker)
	boom := errors.New("boom")

	err := f.Update(context.Background(), func(string) (string, error) { return "garbage", boom })
	assert.ErrorIs(t, err, boom)

	text, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, sampleTracker, text)
}

func TestFileUpdateLockBusy(t *testing.T) {
	f := writeDoc(t, sampleTracker)
	f.LockTimeout = 100 * time.Millisecond

	held := flock.New(f.Path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	err = f.Update(context.Background(), func(s string) (string, error) { return s + "x", nil })
	assert.ErrorIs(t, err, ErrLockBusy)
}

func TestFileUpdateSerializesAllocation(t *testing.T) {
	f := writeDoc(t, sampleTracker)
	f.LockTimeout = 5 * time.Second

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.Update(context.Background(), func(text string) (string, error) {
				out, _, err := AddItem(text, NewItem{Prefix: types.PrefixUI, Title: "concurrent"})
				return out, err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	doc, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Diagnostics, "no duplicate ids")
	assert.Len(t, doc.Unresolved(types.PrefixUI), writers+1)
}

func TestLockSync(t *testing.T) {
	f := writeDoc(t, sampleTracker)

	unlock, ok, err := f.LockSync()
	require.NoError(t, err)
	require.True(t, ok)

	held := flock.New(f.Path + ".sync.lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	assert.False(t, locked)

	unlock()

	unlock2, ok, err := f.LockSync()
	require.NoError(t, err)
	assert.True(t, ok)
	unlock2()
}
