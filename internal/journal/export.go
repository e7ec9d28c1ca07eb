// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// Entry is one journaled attempt with the run it belongs to.
type Entry struct {
	RunID  string    `json:"run_id" yaml:"run_id"`
	Repo   string    `json:"repo" yaml:"repo"`
	ItemID string    `json:"item_id" yaml:"item_id"`
	State  string    `json:"state" yaml:"state"`
	Issue  int       `json:"issue,omitempty" yaml:"issue,omitempty"`
	URL    string    `json:"url,omitempty" yaml:"url,omitempty"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
	At     time.Time `json:"at" yaml:"at"`
}

const defaultHistoryLimit = 50

// History returns the newest attempts first. limit <= 0 uses a default of 50.
func (s *Store) History(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, repo, item_id, state, issue, url, error, at
		FROM attempts ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.RunID, &e.Repo, &e.ItemID, &e.State, &e.Issue, &e.URL, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, at); parseErr == nil {
			e.At = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes the history to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	entries, err := s.History(ctx, limit)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the history to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, limit int) error {
	entries, err := s.History(ctx, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
