// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tracker reads and rewrites the tracker document: a markdown file
// holding a testing-task table (TEST-NNN rows) and a UI-change table
// (UI-NNN rows). Every rewrite is position preserving; bytes outside the
// changed cell or the inserted row are never touched.
package tracker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// Table column positions, identical for both tables.
const (
	colID = iota
	colTitle
	colClassifier
	colPriority
	colStatus
	colIssue
	colNotes

	numColumns
)

// idPattern matches the first cell of a tracker row.
var idPattern = regexp.MustCompile(`^([A-Z]+)-(\d+)$`)

// DiagnosticKind classifies a row the parser could not fully trust.
type DiagnosticKind string

const (
	DiagMalformedRow DiagnosticKind = "malformed-row"
	DiagBadIssueRef  DiagnosticKind = "bad-issue-ref"
	DiagUnknownStat  DiagnosticKind = "unknown-status"
	DiagDuplicateID  DiagnosticKind = "duplicate-id"
	DiagWrongTable   DiagnosticKind = "wrong-table"
	DiagOutsideTable DiagnosticKind = "outside-table"
)

// Diagnostic reports a problem with one row. Line is 1-based.
type Diagnostic struct {
	Line    int            `json:"line" yaml:"line"`
	ID      string         `json:"id" yaml:"id"`
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s (%s)", d.Line, d.ID, d.Message, d.Kind)
}

// Excludes reports whether the diagnosed row was left out of the records.
func (d Diagnostic) Excludes() bool {
	switch d.Kind {
	case DiagMalformedRow, DiagBadIssueRef, DiagDuplicateID:
		return true
	}
	return false
}

// Record is a parsed tracker row and its 1-based source line.
type Record struct {
	Item types.TrackerItem
	Line int
}

// Document is a parsed tracker document. It keeps the source lines so
// String reproduces the input exactly.
type Document struct {
	Records     []Record
	Diagnostics []Diagnostic

	lines     []string
	rows      []row
	tables    []table
	ambiguous map[string]bool
}

// row is any line whose first cell looks like an item id, well formed or not.
type row struct {
	idx    int
	id     string
	prefix types.Prefix
	cells  []cell
}

// cell is one pipe-delimited cell. start and end delimit the trimmed
// content within the line; rawStart and rawEnd delimit everything between
// the surrounding pipes.
type cell struct {
	text             string
	start, end       int
	rawStart, rawEnd int
}

// Parse splits text into lines and extracts every tracker row.
func Parse(text string) *Document {
	doc := &Document{
		lines:     splitLines(text),
		ambiguous: make(map[string]bool),
	}
	doc.tables = scanTables(text, doc.lines)

	for idx, line := range doc.lines {
		r, ok := parseRow(idx, lineContent(line))
		if ok {
			doc.rows = append(doc.rows, r)
		}
	}

	seen := make(map[string]bool)
	for _, r := range doc.rows {
		if seen[r.id] {
			doc.ambiguous[r.id] = true
			doc.diag(r, DiagDuplicateID, "id already used by an earlier row")
			continue
		}
		seen[r.id] = true

		if len(r.cells) != numColumns {
			doc.diag(r, DiagMalformedRow, fmt.Sprintf("expected %d columns, found %d", numColumns, len(r.cells)))
			continue
		}

		issue, err := types.ParseIssueRef(r.cells[colIssue].text)
		if err != nil {
			doc.diag(r, DiagBadIssueRef, err.Error())
			continue
		}

		item := types.TrackerItem{
			ID:         r.id,
			Prefix:     r.prefix,
			Title:      r.cells[colTitle].text,
			Classifier: r.cells[colClassifier].text,
			Priority:   r.cells[colPriority].text,
			StatusCell: r.cells[colStatus].text,
			Issue:      issue,
			Notes:      r.cells[colNotes].text,
		}
		if status, ok := types.ParseStatusCell(item.StatusCell); ok {
			item.Status = status
		} else {
			doc.diag(r, DiagUnknownStat, fmt.Sprintf("status %q is not one of the canonical statuses", item.StatusCell))
		}

		doc.checkTable(r)
		doc.Records = append(doc.Records, Record{Item: item, Line: r.idx + 1})
	}

	return doc
}

// checkTable reports rows that sit outside any table or under the header
// of the other table.
func (d *Document) checkTable(r row) {
	t, ok := tableForLine(d.tables, r.idx)
	if !ok {
		d.diag(r, DiagOutsideTable, "row is not part of a markdown table")
		return
	}
	if t.prefix != "" && t.prefix != r.prefix {
		d.diag(r, DiagWrongTable, fmt.Sprintf("%s row under the %s table header", r.prefix, t.prefix.Kind()))
	}
}

func (d *Document) diag(r row, kind DiagnosticKind, msg string) {
	d.Diagnostics = append(d.Diagnostics, Diagnostic{Line: r.idx + 1, ID: r.id, Kind: kind, Message: msg})
}

// String returns the document text. With no rewrite applied it is
// byte-identical to the text given to Parse.
func (d *Document) String() string {
	return strings.Join(d.lines, "")
}

// Items returns all parsed items in document order.
func (d *Document) Items() []types.TrackerItem {
	items := make([]types.TrackerItem, len(d.Records))
	for i, r := range d.Records {
		items[i] = r.Item
	}
	return items
}

// Find returns the record with the given id.
func (d *Document) Find(id string) (Record, bool) {
	for _, r := range d.Records {
		if r.Item.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// FindByIssue returns the record that references remote issue n.
func (d *Document) FindByIssue(n types.IssueRef) (Record, bool) {
	for _, r := range d.Records {
		if r.Item.Issue == n {
			return r, true
		}
	}
	return Record{}, false
}

// Ambiguous reports whether id occurs on more than one row.
func (d *Document) Ambiguous(id string) bool {
	return d.ambiguous[id]
}

// Unresolved returns the records of the given prefix that still carry the
// "-" issue sentinel, in document order. Rows with an ambiguous id are
// left out; a write-back could not tell them apart.
func (d *Document) Unresolved(prefix types.Prefix) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.Item.Prefix != prefix || r.Item.Issue.Resolved() || d.ambiguous[r.Item.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseRow recognizes a table line whose first cell is an item id with a
// known prefix.
func parseRow(idx int, line string) (row, bool) {
	if !strings.HasPrefix(strings.TrimLeft(line, " \t"), "|") {
		return row{}, false
	}
	cells := splitCells(line)
	if len(cells) == 0 {
		return row{}, false
	}
	m := idPattern.FindStringSubmatch(cells[colID].text)
	if m == nil {
		return row{}, false
	}
	prefix, ok := types.ParsePrefix(m[1])
	if !ok {
		return row{}, false
	}
	return row{idx: idx, id: cells[colID].text, prefix: prefix, cells: cells}, true
}

// splitCells splits a pipe table line into cells. Escaped pipes (\|) stay
// inside their cell. A trailing pipe closes the last cell.
func splitCells(line string) []cell {
	var pipes []int
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '|':
			pipes = append(pipes, i)
		}
	}
	if len(pipes) == 0 {
		return nil
	}

	bounds := pipes
	if tail := strings.TrimSpace(line[pipes[len(pipes)-1]+1:]); tail != "" {
		bounds = append(bounds, len(line))
	}

	cells := make([]cell, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		rawStart, rawEnd := bounds[i]+1, bounds[i+1]
		raw := line[rawStart:rawEnd]
		lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
		trimmed := strings.TrimSpace(raw)
		start := rawStart + lead
		cells = append(cells, cell{
			text:     strings.ReplaceAll(trimmed, `\|`, "|"),
			start:    start,
			end:      start + len(trimmed),
			rawStart: rawStart,
			rawEnd:   rawEnd,
		})
	}
	return cells
}

// splitLines splits text after every newline so joining the result gives
// back the input.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lineContent strips the line ending.
func lineContent(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// lineEnding returns the line's terminator, "" for a final unterminated line.
func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}
