// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"fmt"
	"strings"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// SetIssue replaces the unresolved "-" issue cell of item id with #n.
// A row that already references an issue is left alone and
// ErrAlreadyResolved is returned.
func SetIssue(text, id string, n types.IssueRef) (string, error) {
	if !n.Resolved() {
		return "", fmt.Errorf("issue number must be positive, got %d", int(n))
	}
	return rewriteCell(text, id, colIssue, func(old string) (string, error) {
		ref, err := types.ParseIssueRef(old)
		if err != nil {
			return "", fmt.Errorf("%s: %w", id, err)
		}
		if ref.Resolved() {
			return "", fmt.Errorf("%w: %s is linked to %s", ErrAlreadyResolved, id, ref)
		}
		return n.String(), nil
	})
}

// SetStatus replaces the status cell of item id with the canonical cell
// for status.
func SetStatus(text, id string, status types.Status) (string, error) {
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", status)
	}
	return rewriteCell(text, id, colStatus, func(string) (string, error) {
		return status.Cell(), nil
	})
}

// rewriteCell locates the single row of id and splices the value returned
// by fn into cell col. Only the bytes of that cell change; when id occurs
// on several rows nothing is changed and ErrAmbiguousID is returned.
func rewriteCell(text, id string, col int, fn func(old string) (string, error)) (string, error) {
	doc := Parse(text)

	var matches []row
	for _, r := range doc.rows {
		if r.id == id {
			matches = append(matches, r)
		}
	}
	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, id)
	case len(matches) > 1:
		return "", fmt.Errorf("%w: %s appears on %d rows", ErrAmbiguousID, id, len(matches))
	}

	r := matches[0]
	if len(r.cells) != numColumns {
		return "", fmt.Errorf("%w: %s has %d columns", ErrMalformedRow, id, len(r.cells))
	}

	c := r.cells[col]
	value, err := fn(c.text)
	if err != nil {
		return "", err
	}
	value = escapeCell(value)

	line := doc.lines[r.idx]
	var updated string
	if c.start == c.end {
		// Empty cell: rewrite the whole gap between the pipes.
		updated = line[:c.rawStart] + " " + value + " " + line[c.rawEnd:]
	} else {
		updated = line[:c.start] + value + line[c.end:]
	}
	if updated == line {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text) + len(value))
	for i, l := range doc.lines {
		if i == r.idx {
			b.WriteString(updated)
			continue
		}
		b.WriteString(l)
	}
	return b.String(), nil
}
