// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Status is the canonical status vocabulary of a tracker item.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusDone       Status = "Done"
)

// Statuses lists the canonical statuses in workflow order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone}

var statusGlyphs = map[Status]string{
	StatusNotStarted: ":white_circle:",
	StatusInProgress: ":large_blue_circle:",
	StatusBlocked:    ":red_circle:",
	StatusDone:       ":green_circle:",
}

// Glyph returns the presentation glyph paired with the status.
func (s Status) Glyph() string { return statusGlyphs[s] }

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	_, ok := statusGlyphs[s]
	return ok
}

// Cell renders the status the way the document stores it, e.g.
// ":large_blue_circle: In Progress".
func (s Status) Cell() string {
	if !s.Valid() {
		return string(s)
	}
	return s.Glyph() + " " + string(s)
}

// ParseStatusCell recognizes a status cell. It accepts the canonical
// "<glyph> <text>" form as well as the bare text, ignoring case and any
// leading glyph.
func ParseStatusCell(cell string) (Status, bool) {
	text := strings.TrimSpace(cell)
	if strings.HasPrefix(text, ":") {
		if end := strings.Index(text[1:], ":"); end >= 0 {
			text = strings.TrimSpace(text[end+2:])
		}
	}
	for _, s := range Statuses {
		if strings.EqualFold(text, string(s)) {
			return s, true
		}
	}
	return "", false
}
