// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a
// watch-triggered sync starts.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs a sync immediately and again whenever the document changes,
// until ctx ends. The directory is watched rather than the file so atomic
// replacements (rename over the old file) are seen. A run that fails with
// ErrSyncInProgress is reported and the watch continues; other run errors
// end the watch.
func (e *Engine) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := e.out()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(e.Doc.Path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", e.Doc.Path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	runOnce := func() error {
		_, err := e.Run(ctx)
		if errors.Is(err, ErrSyncInProgress) {
			fmt.Fprintf(w, "warning: %v, waiting for the next change\n", err)
			return nil
		}
		return err
	}

	if err := runOnce(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Watching %s for changes (Ctrl-C to stop)\n", e.Doc.Path)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, target) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "warning: file watcher: %v\n", err)
		case <-timer.C:
			if err := runOnce(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func relevant(ev fsnotify.Event, target string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == target
}
