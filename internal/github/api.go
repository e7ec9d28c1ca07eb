// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iplixera/nivostack-monorepo/internal/httputil"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// defaultAPIBase is used when the configuration names no API root.
var defaultAPIBase = "https://api.github.com"

const (
	acceptHeader     = "application/vnd.github+json"
	apiVersionHeader = "2022-11-28"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// APIClient creates issues through the REST API with a bearer token.
type APIClient struct {
	Client    *http.Client
	BaseURL   string
	Token     string
	Owner     string
	Repo      string
	UserAgent string

	// Retries opts into backoff on HTTP 429; zero disables it.
	Retries int

	// Trace receives rate-limit notices. May be nil.
	Trace io.Writer
}

// NewAPIClient builds an APIClient for cfg. A nil client gets one with
// cfg.Timeout.
func NewAPIClient(cfg types.GitHubConfig, token string, client *http.Client) *APIClient {
	return &APIClient{
		Client:    httpClient(client, cfg.Timeout),
		BaseURL:   apiBase(cfg.APIBase),
		Token:     token,
		Owner:     cfg.Owner,
		Repo:      cfg.Repo,
		UserAgent: cfg.UserAgent,
		Retries:   cfg.RateLimitRetries,
	}
}

// Name returns the creator identifier.
func (c *APIClient) Name() string { return "api" }

type createdIssue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue posts the issue and returns its number. Any status other
// than 201 is an *HTTPError; a transport failure is a *NetworkError.
func (c *APIClient) CreateIssue(ctx context.Context, issue NewIssue) (Issue, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return Issue{}, fmt.Errorf("encoding issue: %w", err)
	}

	reqURL := fmt.Sprintf("%s/repos/%s/%s/issues", c.BaseURL, c.Owner, c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return Issue{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setHeaders(req, c.Token, c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Retries, c.Trace)
	if err != nil {
		return Issue{}, &NetworkError{Op: "POST " + reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Issue{}, readHTTPError(resp)
	}

	var created createdIssue
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Issue{}, fmt.Errorf("parsing GitHub response: %w", err)
	}
	if created.Number <= 0 {
		return Issue{}, fmt.Errorf("GitHub response has no issue number")
	}
	return Issue{Number: created.Number, URL: created.HTMLURL}, nil
}

func setHeaders(req *http.Request, token, userAgent string) {
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
}

func readHTTPError(resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &HTTPError{StatusCode: resp.StatusCode, Body: msg}
}

func apiBase(configured string) string {
	if configured == "" {
		return defaultAPIBase
	}
	return strings.TrimRight(configured, "/")
}

func httpClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
