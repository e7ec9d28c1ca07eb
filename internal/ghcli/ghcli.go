// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghcli detects and drives the GitHub command-line tool (gh). The
// tool is usable when its binary is on PATH, it answers --version, and
// `gh auth status` reports a logged-in account.
package ghcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBin is the binary looked up on PATH when none is configured.
const DefaultBin = "gh"

// Detection errors. Every Detect failure matches ErrUnavailable and
// exactly one of ErrNotInstalled or ErrNotLoggedIn.
var (
	ErrUnavailable  = errors.New("GitHub CLI not available")
	ErrNotInstalled = errors.New("not found on PATH")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// issueURLPattern extracts the issue number from the URL gh prints.
var issueURLPattern = regexp.MustCompile(`/issues/(\d+)`)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (o *osExecutor) RunOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// Tool runs a specific gh binary.
type Tool struct {
	bin  string
	exec executor
}

var defaultExec = &osExecutor{}

// New returns a Tool for bin, or DefaultBin when bin is empty.
func New(bin string) *Tool {
	return newTool(bin, defaultExec)
}

func newTool(bin string, exec executor) *Tool {
	if bin == "" {
		bin = DefaultBin
	}
	return &Tool{bin: bin, exec: exec}
}

// Name returns the binary name.
func (t *Tool) Name() string { return t.bin }

// Installed reports whether the binary exists on PATH and runs.
func (t *Tool) Installed(ctx context.Context) bool {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return false
	}
	return t.exec.RunSilent(ctx, t.bin, "--version") == nil
}

// Authenticated reports whether `gh auth status` succeeds.
func (t *Tool) Authenticated(ctx context.Context) bool {
	return t.exec.RunSilent(ctx, t.bin, "auth", "status") == nil
}

// CreateIssue runs `gh issue create` against repo ("owner/name") and
// returns the number and URL of the new issue.
func (t *Tool) CreateIssue(ctx context.Context, repo, title, body string, labels []string) (int, string, error) {
	args := []string{"issue", "create", "--repo", repo, "--title", title, "--body", body}
	if len(labels) > 0 {
		args = append(args, "--label", strings.Join(labels, ","))
	}

	out, err := t.exec.RunOutput(ctx, t.bin, args...)
	if err != nil {
		return 0, "", fmt.Errorf("%s issue create: %w", t.bin, err)
	}
	return ParseIssueURL(string(out))
}

// ParseIssueURL finds the issue URL in gh output and returns its number
// and the URL line.
func ParseIssueURL(out string) (int, string, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		m := issueURLPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, line, nil
	}
	return 0, "", fmt.Errorf("no issue URL in output %q", strings.TrimSpace(out))
}

// Detect returns a Tool for bin when it is installed and authenticated.
func Detect(ctx context.Context, bin string) (*Tool, error) {
	t := New(bin)
	if err := t.Check(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Check reports why the tool cannot be used, or nil when it can.
func (t *Tool) Check(ctx context.Context) error {
	if !t.Installed(ctx) {
		return fmt.Errorf("%w: %s %w", ErrUnavailable, t.bin, ErrNotInstalled)
	}
	if !t.Authenticated(ctx) {
		return fmt.Errorf("%w: %s is %w (run `%s auth login`)", ErrUnavailable, t.bin, ErrNotLoggedIn, t.bin)
	}
	return nil
}
