// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ghcli

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	outputFunc    func(name string, args []string) ([]byte, error)
	lastArgs      []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	m.lastArgs = args
	if m.outputFunc != nil {
		return m.outputFunc(name, args)
	}
	return nil, nil
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		exec    *mockExecutor
		wantErr error
	}{
		{
			name: "installed and logged in",
			exec: &mockExecutor{
				availableBins: map[string]bool{"gh": true},
				runnableCmds:  map[string]bool{"gh --version": true, "gh auth status": true},
			},
		},
		{
			name:    "not on PATH",
			exec:    &mockExecutor{},
			wantErr: ErrNotInstalled,
		},
		{
			name: "on PATH but broken",
			exec: &mockExecutor{
				availableBins: map[string]bool{"gh": true},
				runnableCmds:  map[string]bool{"gh auth status": true},
			},
			wantErr: ErrNotInstalled,
		},
		{
			name: "not logged in",
			exec: &mockExecutor{
				availableBins: map[string]bool{"gh": true},
				runnableCmds:  map[string]bool{"gh --version": true},
			},
			wantErr: ErrNotLoggedIn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTool("", tt.exec).Check(context.Background())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %q should match %q", err, tt.wantErr)
			}
			for _, other := range []error{ErrNotInstalled, ErrNotLoggedIn} {
				if other != tt.wantErr && errors.Is(err, other) {
					t.Errorf("error %q should not match %q", err, other)
				}
			}
		})
	}
}

func TestDetectMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	tool, err := Detect(context.Background(), "gh")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
	if tool != nil {
		t.Errorf("expected no tool, got %q", tool.Name())
	}
}

func TestCreateIssue(t *testing.T) {
	exec := &mockExecutor{
		outputFunc: func(name string, _ []string) ([]byte, error) {
			if name != "gh" {
				return nil, errors.New("expected gh binary")
			}
			return []byte("Creating issue in acme/app\n\nhttps://github.com/acme/app/issues/57\n"), nil
		},
	}
	tool := newTool("gh", exec)

	n, url, err := tool.CreateIssue(context.Background(), "acme/app", "[UI] Header", "body", []string{"ui", "frontend"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 57 {
		t.Errorf("got number %d, want 57", n)
	}
	if url != "https://github.com/acme/app/issues/57" {
		t.Errorf("got url %q", url)
	}

	wantArgs := []string{"issue", "create", "--repo", "acme/app", "--title", "[UI] Header", "--body", "body", "--label", "ui,frontend"}
	if !reflect.DeepEqual(exec.lastArgs, wantArgs) {
		t.Errorf("got args %q, want %q", exec.lastArgs, wantArgs)
	}
}

func TestCreateIssueFailures(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{name: "command fails", err: errors.New("exit status 1: HTTP 404")},
		{name: "no url printed", out: "something went sideways\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{
				outputFunc: func(string, []string) ([]byte, error) { return []byte(tt.out), tt.err },
			}
			_, _, err := newTool("gh", exec).CreateIssue(context.Background(), "acme/app", "t", "b", nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestParseIssueURL(t *testing.T) {
	n, _, err := ParseIssueURL("https://github.com/o/r/issues/1234")
	if err != nil || n != 1234 {
		t.Errorf("got %d, %v; want 1234", n, err)
	}
	if _, _, err := ParseIssueURL("https://github.com/o/r/pull/12"); err == nil {
		t.Error("expected error for pull request URL")
	}
}
