// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iplixera/nivostack-monorepo/internal/ghcli"
	"github.com/iplixera/nivostack-monorepo/internal/github"
	"github.com/iplixera/nivostack-monorepo/internal/journal"
	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// setDefaults registers every configuration key so environment variables
// are honoured by Unmarshal even when no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("tracker.path", "docs/TRACKER_TESTING_UI.md")
	v.SetDefault("tracker.lock_timeout", tracker.DefaultLockTimeout)

	v.SetDefault("github.owner", "iplixera")
	v.SetDefault("github.repo", "nivostack-monorepo")
	v.SetDefault("github.api_base", "https://api.github.com")
	v.SetDefault("github.timeout", "10s")
	v.SetDefault("github.user_agent", "tracker-sync")
	v.SetDefault("github.token_env", "GITHUB_TOKEN")
	v.SetDefault("github.token_file", "~/.devbridge_tokens")
	v.SetDefault("github.cli", ghcli.DefaultBin)
	v.SetDefault("github.rate_limit_retries", 0)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", ".tracker-sync/journal.db")
}

// loadConfig decodes the viper settings and applies the --tracker flag.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if path, _ := cmd.Flags().GetString("tracker"); path != "" {
		cfg.Tracker.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func trackerFile(cfg types.Config) *tracker.File {
	return tracker.NewFile(cfg.Tracker.Path, cfg.Tracker.LockTimeout)
}

// authenticate resolves a credential through the provider chain. Provider
// warnings go to w.
func authenticate(ctx context.Context, cfg types.Config, w io.Writer) (github.Credential, error) {
	return github.Resolve(ctx, github.Providers(cfg.GitHub, nil), w)
}

// openJournal opens the sync journal when enabled. A journal that cannot
// be opened is reported and the sync continues without it.
func openJournal(cfg types.Config, w io.Writer) *journal.Store {
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(w, "warning: journal unavailable: %v\n", err)
		return nil
	}
	return store
}

// noCredentialError explains how to authenticate.
func noCredentialError(cmd *cobra.Command, cfg types.Config) error {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "No GitHub authentication available. Either:\n")
	fmt.Fprintf(w, "  1. run: %s auth login\n", cfg.GitHub.CLI)
	fmt.Fprintf(w, "  2. export %s=<token>\n", cfg.GitHub.TokenEnv)
	fmt.Fprintf(w, "  3. add %s=<token> to %s\n", cfg.GitHub.TokenEnv, cfg.GitHub.TokenFile)
	fmt.Fprintf(w, "Or preview with: tracker-sync sync --dry-run\n")
	return github.ErrNoCredential
}
