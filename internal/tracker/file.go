// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
)

// DefaultLockTimeout bounds the wait for the document lock when File has
// no LockTimeout.
const DefaultLockTimeout = 2 * time.Second

// lockRetryDelay is the polling interval while waiting for the lock.
var lockRetryDelay = 50 * time.Millisecond

// File is the tracker document on disk. All mutations go through Update,
// which serializes writers across processes.
type File struct {
	Path        string
	LockTimeout time.Duration
}

// NewFile returns a File for path using timeout for lock waits.
func NewFile(path string, timeout time.Duration) *File {
	return &File{Path: path, LockTimeout: timeout}
}

// Read returns the document text. A missing file is ErrDocumentNotFound.
func (f *File) Read() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, f.Path)
		}
		return "", fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return string(data), nil
}

// Load reads and parses the document.
func (f *File) Load() (*Document, error) {
	text, err := f.Read()
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// Update takes the document lock, re-reads the file, applies fn and
// atomically replaces the file when fn changed the text. The lock is held
// for the whole read-modify-write.
func (f *File) Update(ctx context.Context, fn func(text string) (string, error)) error {
	unlock, err := f.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	text, err := f.Read()
	if err != nil {
		return err
	}
	updated, err := fn(text)
	if err != nil {
		return err
	}
	if updated == text {
		return nil
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(f.Path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := atomic.WriteFile(f.Path, strings.NewReader(updated)); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	// atomic.WriteFile creates the replacement with default permissions.
	if err := os.Chmod(f.Path, mode); err != nil {
		return fmt.Errorf("restoring permissions on %s: %w", f.Path, err)
	}
	return nil
}

func (f *File) lock(ctx context.Context) (func(), error) {
	timeout := f.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lk := flock.New(f.Path + ".lock")
	locked, err := lk.TryLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquiring document lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (waited %v on %s.lock)", ErrLockBusy, timeout, f.Path)
	}
	return func() { _ = lk.Unlock() }, nil
}

// LockSync takes the exclusive sync lock without waiting. It reports
// ok=false when another process holds it.
func (f *File) LockSync() (unlock func(), ok bool, err error) {
	lk := flock.New(f.Path + ".sync.lock")
	locked, err := lk.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring sync lock: %w", err)
	}
	if !locked {
		return nil, false, nil
	}
	return func() { _ = lk.Unlock() }, true, nil
}
