// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iplixera/nivostack-monorepo/internal/github"
	"github.com/iplixera/nivostack-monorepo/internal/syncer"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create GitHub issues for unresolved tracker rows",
	Long: `Sync scans the tracker document for TEST and UI rows whose GitHub Issue
column is "-", creates one issue per row, and writes the issue number back
into the row. Rows that already have an issue are never touched, so running
sync twice creates nothing the second time.

A failed row is reported and the run continues; the command still exits 0.
With --dry-run (or --test) synthetic numbers are printed and the document
is left unchanged; no credentials are needed.

With --watch the command syncs once, then again whenever the document
changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	testMode, _ := cmd.Flags().GetBool("test")
	watch, _ := cmd.Flags().GetBool("watch")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	dryRun = dryRun || testMode

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Repository: %s\n", cfg.GitHub.Slug())
	fmt.Fprintf(out, "Tracker: %s\n", cfg.Tracker.Path)

	engine, closeEngine, err := newEngine(ctx, cmd, cfg, dryRun)
	if errors.Is(err, github.ErrNoCredential) {
		return noCredentialError(cmd, cfg)
	}
	if err != nil {
		return err
	}
	defer closeEngine()

	if watch {
		return engine.Watch(ctx, debounce)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	if result.Created+result.Recovered > 0 && !dryRun {
		fmt.Fprintf(out, "View issues at: %s\n", cfg.GitHub.IssuesURL())
	}
	return nil
}

// newEngine builds a sync engine for cfg. Outside dry-run it resolves
// credentials and opens the journal; the returned func releases both.
func newEngine(ctx context.Context, cmd *cobra.Command, cfg types.Config, dryRun bool) (*syncer.Engine, func(), error) {
	out := cmd.OutOrStdout()
	engine := &syncer.Engine{
		Doc:    trackerFile(cfg),
		Repo:   cfg.GitHub.Slug(),
		DryRun: dryRun,
		Out:    out,
	}
	if dryRun {
		engine.Creator = &github.DryRunClient{}
		return engine, func() {}, nil
	}

	cred, err := authenticate(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	engine.Creator = github.NewCreator(cred, cfg.GitHub, nil, out)
	fmt.Fprintf(out, "Authenticated via %s\n", cred.Source)

	store := openJournal(cfg, cmd.ErrOrStderr())
	if store == nil {
		return engine, func() {}, nil
	}
	engine.Journal = store
	return engine, func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing journal: %v\n", err)
		}
	}, nil
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "print what would be created without calling GitHub or editing the tracker")
	syncCmd.Flags().Bool("test", false, "alias for --dry-run")
	syncCmd.Flags().Bool("watch", false, "keep running and sync whenever the tracker changes")
	syncCmd.Flags().Duration("debounce", syncer.DefaultDebounce, "quiet period before a watch-triggered sync")

	rootCmd.AddCommand(syncCmd)
}
