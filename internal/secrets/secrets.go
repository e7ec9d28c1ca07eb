// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a KEY=value dotfile such as
// ~/.devbridge_tokens. Quotes around values are stripped, comments and
// blank lines are ignored, and values still set to a known placeholder are
// dropped.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Placeholders are template values that mean "not configured".
var Placeholders = []string{"ghp_your_token_here", "your_token_here", "changeme"}

// Load reads the dotfile at path and returns its non-empty, non-placeholder
// values. A missing file is not an error; Load returns an empty map.
func Load(path string) (map[string]string, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets file %s: %w", path, err)
	}

	secrets := make(map[string]string, len(values))
	for k, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || isPlaceholder(v) {
			continue
		}
		secrets[k] = v
	}
	return secrets, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}

func isPlaceholder(v string) bool {
	for _, p := range Placeholders {
		if strings.EqualFold(v, p) {
			return true
		}
	}
	return false
}
