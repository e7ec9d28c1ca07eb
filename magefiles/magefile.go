//go:build mage

// Package main contains Mage build targets for tracker-sync developer tooling.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

const (
	binDir  = "bin"
	binName = "tracker-sync"
	cmdPkg  = "./cmd/tracker-sync"

	trackerPath = "docs/TRACKER_TESTING_UI.md"
)

// sampleTracker seeds a new checkout with empty testing and UI tables.
const sampleTracker = `# Testing & UI Tracker

## Testing Tasks

| ID | Title | Category | Priority | Status | GitHub Issue | Notes |
|----|-------|----------|----------|--------|--------------|-------|

## UI Changes

| ID | Title | Component | Priority | Status | GitHub Issue | Notes |
|----|-------|-----------|----------|--------|--------------|-------|
`

// Init writes an empty tracker document unless one already exists.
func Init() error {
	if _, err := os.Stat(trackerPath); err == nil {
		fmt.Printf("%s already exists\n", trackerPath)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(trackerPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(trackerPath), err)
	}
	if err := os.WriteFile(trackerPath, []byte(sampleTracker), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", trackerPath, err)
	}
	fmt.Printf("Created %s\n", trackerPath)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Vet and Test.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Preview builds the CLI and runs a dry-run sync against the tracker.
func Preview() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "sync", "--dry-run")
}

// Stats prints Go line counts and a summary of the tracker document.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)

	doc, err := tracker.NewFile(trackerPath, 0).Load()
	if errors.Is(err, tracker.ErrDocumentNotFound) {
		fmt.Printf("Tracker: %s not found (run mage init)\n", trackerPath)
		return nil
	}
	if err != nil {
		return err
	}
	for _, p := range types.Prefixes {
		var total, open int
		for _, it := range doc.Items() {
			if it.Prefix != p {
				continue
			}
			total++
			if !it.Issue.Resolved() {
				open++
			}
		}
		fmt.Printf("Tracker %-5s %3d item(s), %3d without an issue\n", p+":", total, open)
	}
	if n := len(doc.Diagnostics); n > 0 {
		fmt.Printf("Tracker problems: %d (run tracker-sync validate)\n", n)
	}
	return nil
}

// countGoLines counts non-blank lines in production and test Go files,
// skipping hidden and underscore-prefixed directories.
func countGoLines(root string) (prod, tests int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			tests += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, tests, err
}
