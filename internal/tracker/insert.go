// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"fmt"
	"strings"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// NewItem holds the user-supplied fields of an item to add.
type NewItem struct {
	Prefix     types.Prefix
	Title      string
	Classifier string
	Priority   string
	Notes      string
}

// AddItem allocates the next identifier for item.Prefix and inserts a
// Not Started, unresolved row for it. It returns the new text and the
// item as written.
func AddItem(text string, item NewItem) (string, types.TrackerItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return "", types.TrackerItem{}, fmt.Errorf("title is required")
	}
	added := types.TrackerItem{
		ID:         NextID(text, item.Prefix),
		Prefix:     item.Prefix,
		Title:      item.Title,
		Classifier: item.Classifier,
		Priority:   item.Priority,
		Status:     types.StatusNotStarted,
		StatusCell: types.StatusNotStarted.Cell(),
		Notes:      item.Notes,
	}
	out, err := Insert(text, added)
	if err != nil {
		return "", types.TrackerItem{}, err
	}
	return out, added, nil
}

// Insert adds a row for item directly after the last row of the same
// prefix. Without such a row it falls back to the table whose header
// names the prefix's classifier column and inserts after its first data
// row, or after the delimiter row of an empty table.
func Insert(text string, item types.TrackerItem) (string, error) {
	doc := Parse(text)

	anchor := -1
	for _, r := range doc.rows {
		if r.prefix == item.Prefix {
			anchor = max(anchor, r.idx)
		}
	}
	if anchor < 0 {
		t, ok := tableFor(doc.tables, item.Prefix)
		if !ok {
			return "", fmt.Errorf("%w for %s items", ErrNoInsertionPoint, item.Prefix.Kind())
		}
		anchor = t.headerIdx + 1
		if len(t.rowIdx) > 0 {
			anchor = t.rowIdx[0]
		}
	}
	if anchor >= len(doc.lines) {
		return "", fmt.Errorf("%w for %s items", ErrNoInsertionPoint, item.Prefix.Kind())
	}

	lines := doc.lines
	eol := lineEnding(lines[anchor])
	if eol == "" {
		eol = "\n"
		if anchor > 0 && lineEnding(lines[anchor-1]) == "\r\n" {
			eol = "\r\n"
		}
		lines[anchor] += eol
	}

	var b strings.Builder
	for _, l := range lines[:anchor+1] {
		b.WriteString(l)
	}
	b.WriteString(FormatRow(item))
	b.WriteString(eol)
	for _, l := range lines[anchor+1:] {
		b.WriteString(l)
	}
	return b.String(), nil
}

// FormatRow renders item as a table row without a line ending.
func FormatRow(item types.TrackerItem) string {
	cells := item.Cells()
	for i, c := range cells {
		cells[i] = escapeCell(c)
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// escapeCell keeps a value inside a single cell: line breaks become spaces
// and pipes are escaped.
func escapeCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = strings.ReplaceAll(s, `\|`, "|")
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.TrimSpace(s)
}
