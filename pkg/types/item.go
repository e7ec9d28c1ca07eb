// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the tracker-sync
// components: tracker rows, their identifier prefixes, canonical statuses,
// remote issue references, and the configuration they are built from.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix discriminates the two tracker tables. Every item identifier
// starts with its prefix (TEST-001, UI-014).
type Prefix string

const (
	PrefixTest Prefix = "TEST"
	PrefixUI   Prefix = "UI"
)

// Prefixes lists the known prefixes in sync order: testing tasks first,
// then UI changes.
var Prefixes = []Prefix{PrefixTest, PrefixUI}

// ParsePrefix maps an identifier prefix ("TEST", "UI") to a Prefix.
func ParsePrefix(s string) (Prefix, bool) {
	switch Prefix(strings.ToUpper(s)) {
	case PrefixTest:
		return PrefixTest, true
	case PrefixUI:
		return PrefixUI, true
	}
	return "", false
}

// ParseKind maps the table kind word used on the command line
// ("testing", "ui") to a Prefix.
func ParseKind(kind string) (Prefix, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "testing", "test":
		return PrefixTest, nil
	case "ui":
		return PrefixUI, nil
	}
	return "", fmt.Errorf("unknown item type %q (want testing or ui)", kind)
}

// Kind returns the table kind word ("testing" or "ui").
func (p Prefix) Kind() string {
	if p == PrefixTest {
		return "testing"
	}
	return "ui"
}

// TitleTag is prepended to remote issue titles.
func (p Prefix) TitleTag() string {
	if p == PrefixTest {
		return "[Testing]"
	}
	return "[UI]"
}

// TypeName is the human-readable item type used in issue bodies.
func (p Prefix) TypeName() string {
	if p == PrefixTest {
		return "Testing Task"
	}
	return "UI Change"
}

// ClassifierLabel names the third column of the prefix's table.
func (p Prefix) ClassifierLabel() string {
	if p == PrefixTest {
		return "Category"
	}
	return "Component"
}

// Labels returns the remote issue labels attached to items of this prefix.
func (p Prefix) Labels() []string {
	if p == PrefixTest {
		return []string{"testing", "integration"}
	}
	return []string{"ui", "frontend"}
}

// Header returns the column headers of the prefix's table.
func (p Prefix) Header() []string {
	return []string{"ID", "Title", p.ClassifierLabel(), "Priority", "Status", "GitHub Issue", "Notes"}
}

// IssueRef is a remote issue number. The zero value is the unresolved
// sentinel, rendered as "-" in the document.
type IssueRef int

// Unresolved is the document form of a missing issue reference.
const Unresolved = "-"

// Resolved reports whether the reference points at a remote issue.
func (r IssueRef) Resolved() bool { return r > 0 }

func (r IssueRef) String() string {
	if r <= 0 {
		return Unresolved
	}
	return "#" + strconv.Itoa(int(r))
}

// ParseIssueRef parses an issue cell: "-" or "#<positive integer>".
func ParseIssueRef(cell string) (IssueRef, error) {
	cell = strings.TrimSpace(cell)
	if cell == Unresolved {
		return 0, nil
	}
	digits, ok := strings.CutPrefix(cell, "#")
	if !ok {
		return 0, fmt.Errorf("issue reference %q must be %q or #<number>", cell, Unresolved)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("issue reference %q is not a positive number", cell)
	}
	return IssueRef(n), nil
}

// TrackerItem is one row of the tracker document.
type TrackerItem struct {
	// ID is the immutable identifier, e.g. "TEST-007".
	ID string `json:"id" yaml:"id"`

	// Prefix is the table the item belongs to.
	Prefix Prefix `json:"prefix" yaml:"prefix"`

	// Title is the free-text row title.
	Title string `json:"title" yaml:"title"`

	// Classifier holds the category (TEST rows) or component (UI rows).
	Classifier string `json:"classifier" yaml:"classifier"`

	// Priority is a free-text label, P0-P3 by convention.
	Priority string `json:"priority" yaml:"priority"`

	// Status is the canonical status parsed from StatusCell. Empty when the
	// cell does not hold a known status.
	Status Status `json:"status" yaml:"status"`

	// StatusCell is the status cell exactly as written in the document.
	StatusCell string `json:"status_cell" yaml:"status_cell"`

	// Issue is the remote issue number, zero while unresolved.
	Issue IssueRef `json:"issue" yaml:"issue"`

	// Notes is the free-text description column.
	Notes string `json:"notes" yaml:"notes"`
}

// Cells returns the row cells in table column order.
func (it TrackerItem) Cells() []string {
	statusCell := it.StatusCell
	if statusCell == "" {
		statusCell = it.Status.Cell()
	}
	return []string{it.ID, it.Title, it.Classifier, it.Priority, statusCell, it.Issue.String(), it.Notes}
}
