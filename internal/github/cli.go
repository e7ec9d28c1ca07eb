// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"math/rand"
)

// issueCLI is the part of the gh tool the CLI client drives.
type issueCLI interface {
	Name() string
	CreateIssue(ctx context.Context, repo, title, body string, labels []string) (int, string, error)
}

// CLIClient creates issues by running `gh issue create`.
type CLIClient struct {
	Tool issueCLI
	Repo string // owner/name
}

// Name returns the creator identifier.
func (c *CLIClient) Name() string { return c.Tool.Name() }

// CreateIssue runs the tool and parses the issue number from its output.
func (c *CLIClient) CreateIssue(ctx context.Context, issue NewIssue) (Issue, error) {
	n, url, err := c.Tool.CreateIssue(ctx, c.Repo, issue.Title, issue.Body, issue.Labels)
	if err != nil {
		return Issue{}, err
	}
	return Issue{Number: n, URL: url}, nil
}

// DryRunClient fabricates issue numbers without any I/O.
type DryRunClient struct {
	// Next returns the synthetic number; nil draws from 1000-9999.
	Next func() int
}

// Name returns the creator identifier.
func (c *DryRunClient) Name() string { return "dry-run" }

// CreateIssue returns a synthetic issue.
func (c *DryRunClient) CreateIssue(ctx context.Context, _ NewIssue) (Issue, error) {
	if err := ctx.Err(); err != nil {
		return Issue{}, err
	}
	n := 1000 + rand.Intn(9000)
	if c.Next != nil {
		n = c.Next()
	}
	return Issue{Number: n, Synthetic: true}, nil
}
