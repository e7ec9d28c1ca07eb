// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// TrackerConfig locates the tracker document.
type TrackerConfig struct {
	// Path is the tracker document, relative to the working directory.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// LockTimeout bounds the wait for the document lock.
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// GitHubConfig holds the remote repository and authentication settings.
type GitHubConfig struct {
	Owner string `json:"owner" yaml:"owner" mapstructure:"owner"`
	Repo  string `json:"repo" yaml:"repo" mapstructure:"repo"`

	// APIBase is the REST API root (https://api.github.com).
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every API request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// TokenEnv names the environment variable holding a token.
	TokenEnv string `json:"token_env" yaml:"token_env" mapstructure:"token_env"`

	// TokenFile is a KEY=value dotfile that may hold the token under TokenEnv.
	TokenFile string `json:"token_file" yaml:"token_file" mapstructure:"token_file"`

	// CLI is the GitHub command-line tool binary ("gh"). Empty disables it.
	CLI string `json:"cli" yaml:"cli" mapstructure:"cli"`

	// RateLimitRetries opts into exponential backoff on HTTP 429. Zero
	// means a failed request surfaces immediately.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// Slug returns "owner/repo".
func (c GitHubConfig) Slug() string {
	return c.Owner + "/" + c.Repo
}

// IssuesURL returns the browser URL of the repository's issue list.
func (c GitHubConfig) IssuesURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/issues", c.Owner, c.Repo)
}

// JournalConfig controls the local sync journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all tracker-sync settings.
type Config struct {
	Tracker TrackerConfig `json:"tracker" yaml:"tracker" mapstructure:"tracker"`
	GitHub  GitHubConfig  `json:"github" yaml:"github" mapstructure:"github"`
	Journal JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// Validate checks the settings every remote operation depends on.
func (c Config) Validate() error {
	if c.Tracker.Path == "" {
		return fmt.Errorf("tracker.path is empty")
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("github.owner and github.repo must both be set")
	}
	return nil
}
