// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"slices"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// tableParser only needs GFM tables; the parser holds no per-call state.
var tableParser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// table is a markdown pipe table located in the document. Line indexes
// are 0-based.
type table struct {
	prefix    types.Prefix // "" when the header names neither Category nor Component
	header    []string
	headerIdx int
	rowIdx    []int
}

// scanTables locates every markdown table and maps its header and body
// rows back to source lines.
func scanTables(text string, lines []string) []table {
	src := []byte(text)
	starts := lineStarts(lines)
	root := tableParser.Parse(gmtext.NewReader(src))

	var tables []table
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tbl, ok := n.(*extast.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		tables = append(tables, readTable(tbl, src, starts))
		return ast.WalkSkipChildren, nil
	})
	return tables
}

func readTable(tbl *extast.Table, src []byte, starts []int) table {
	t := table{headerIdx: -1}
	prev := -1
	for child := tbl.FirstChild(); child != nil; child = child.NextSibling() {
		idx, ok := firstTextLine(child, src, starts)
		if !ok {
			// A row without any text still occupies the next line.
			idx = prev + 1
		}
		prev = idx

		switch child.Kind() {
		case extast.KindTableHeader:
			t.headerIdx = idx
			t.header = cellTexts(child, src)
		case extast.KindTableRow:
			t.rowIdx = append(t.rowIdx, idx)
		}
	}
	if len(t.header) > colClassifier {
		t.prefix = prefixForClassifier(t.header[colClassifier])
	}
	return t
}

func prefixForClassifier(label string) types.Prefix {
	for _, p := range types.Prefixes {
		if strings.EqualFold(label, p.ClassifierLabel()) {
			return p
		}
	}
	return ""
}

// firstTextLine returns the source line of the first text inside n.
func firstTextLine(n ast.Node, src []byte, starts []int) (int, bool) {
	offset := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if offset < 0 {
		return 0, false
	}
	return lineAt(starts, offset), true
}

// cellTexts returns the text of every cell of a header or body row.
func cellTexts(rowNode ast.Node, src []byte) []string {
	var out []string
	for c := rowNode.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != extast.KindTableCell {
			continue
		}
		var b strings.Builder
		_ = ast.Walk(c, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := n.(*ast.Text); ok && entering {
				b.Write(t.Segment.Value(src))
			}
			return ast.WalkContinue, nil
		})
		out = append(out, strings.TrimSpace(b.String()))
	}
	return out
}

func lineStarts(lines []string) []int {
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l)
	}
	return starts
}

// lineAt maps a byte offset to its 0-based line index.
func lineAt(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}

func tableForLine(tables []table, idx int) (table, bool) {
	for _, t := range tables {
		if slices.Contains(t.rowIdx, idx) {
			return t, true
		}
	}
	return table{}, false
}

// tableFor returns the first table whose header identifies prefix.
func tableFor(tables []table, prefix types.Prefix) (table, bool) {
	for _, t := range tables {
		if t.prefix == prefix && t.headerIdx >= 0 {
			return t, true
		}
	}
	return table{}, false
}
