// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package github creates issues in a GitHub repository. Three creators
// share the IssueCreator interface: the REST API client (token
// authentication), the gh command-line client, and a dry-run client that
// performs no I/O. Resolve picks the credential the creators are built
// from by trying the configured providers in order.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by the creators and the provider chain.
var (
	ErrNoCredential = errors.New("no GitHub authentication available")
	ErrUnauthorized = errors.New("GitHub rejected the credentials")
)

// NewIssue is the payload of an issue to create.
type NewIssue struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// Issue is a created remote issue. Synthetic issues come from a dry run
// and do not exist remotely.
type Issue struct {
	Number    int
	URL       string
	Synthetic bool
}

// IssueCreator creates one remote issue per call.
type IssueCreator interface {
	// Name identifies the creator in trace output ("api", "gh", "dry-run").
	Name() string

	CreateIssue(ctx context.Context, issue NewIssue) (Issue, error)
}

// HTTPError is a non-success response from the GitHub API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GitHub API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("GitHub API returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Is matches ErrUnauthorized for 401 and 403 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// NetworkError is a transport failure or timeout; no response was read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
