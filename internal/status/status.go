// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package status maps free-text status words onto the canonical tracker
// statuses and rewrites an item's status cell.
package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// ErrUnknownStatus is returned when no rule matches the given text.
var ErrUnknownStatus = errors.New("unknown status")

// Rule maps a normalized synonym to a canonical status.
type Rule struct {
	Pattern string
	Status  types.Status
}

// Rules are consulted in order. Patterns are already normalized.
var Rules = []Rule{
	{"not started", types.StatusNotStarted},
	{"to do", types.StatusNotStarted},
	{"todo", types.StatusNotStarted},
	{"in progress", types.StatusInProgress},
	{"working", types.StatusInProgress},
	{"wip", types.StatusInProgress},
	{"blocked", types.StatusBlocked},
	{"stuck", types.StatusBlocked},
	{"done", types.StatusDone},
	{"complete", types.StatusDone},
	{"finished", types.StatusDone},
	{"closed", types.StatusDone},
}

// Normalize lower-cases s, turns underscores and hyphens into spaces and
// collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Resolve maps free text to a canonical status. An exact match on a
// pattern wins. Otherwise the longest pattern contained in the text wins;
// equal lengths go to the earlier rule.
func Resolve(free string) (types.Status, error) {
	text := Normalize(free)
	if text == "" {
		return "", fmt.Errorf("%w: empty status", ErrUnknownStatus)
	}

	for _, r := range Rules {
		if text == r.Pattern {
			return r.Status, nil
		}
	}

	best := -1
	for i, r := range Rules {
		if !strings.Contains(text, r.Pattern) {
			continue
		}
		if best < 0 || len(r.Pattern) > len(Rules[best].Pattern) {
			best = i
		}
	}
	if best < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, free)
	}
	return Rules[best].Status, nil
}

// Update resolves free and rewrites the status cell of item id. It
// returns the new text and the status written.
func Update(text, id, free string) (string, types.Status, error) {
	s, err := Resolve(free)
	if err != nil {
		return "", "", err
	}
	out, err := tracker.SetStatus(text, id, s)
	if err != nil {
		return "", "", err
	}
	return out, s, nil
}
