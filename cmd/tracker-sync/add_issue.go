// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iplixera/nivostack-monorepo/internal/github"
	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

var addIssueCmd = &cobra.Command{
	Use:   "add-issue <testing|ui> <title>",
	Short: "Append a new testing task or UI change to the tracker",
	Long: `Add-issue allocates the next TEST-NNN or UI-NNN identifier, appends a
Not Started row to the matching table, and creates the GitHub issue for it
right away when authentication is available. Without authentication the row
is left unresolved and a later sync picks it up.

Testing tasks default to category Integration, UI changes to component
Dashboard; both default to priority P1.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAddIssue,
}

func runAddIssue(cmd *cobra.Command, args []string) error {
	prefix, err := types.ParseKind(args[0])
	if err != nil {
		return err
	}
	title := ""
	if len(args) > 1 {
		title = strings.TrimSpace(args[1])
	}
	if title == "" {
		return fmt.Errorf("title is required: tracker-sync add-issue %s \"<title>\"", prefix.Kind())
	}

	category, _ := cmd.Flags().GetString("category")
	component, _ := cmd.Flags().GetString("component")
	priority, _ := cmd.Flags().GetString("priority")
	notes, _ := cmd.Flags().GetString("notes")
	noSync, _ := cmd.Flags().GetBool("no-sync")

	classifier := category
	if prefix == types.PrefixUI {
		classifier = component
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	doc := trackerFile(cfg)

	var added types.TrackerItem
	err = doc.Update(ctx, func(text string) (string, error) {
		next, item, err := tracker.AddItem(text, tracker.NewItem{
			Prefix:     prefix,
			Title:      title,
			Classifier: classifier,
			Priority:   priority,
			Notes:      notes,
		})
		added = item
		return next, err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added: %s %s (%s, %s)\n", added.ID, added.Title, added.Classifier, added.Priority)

	if noSync {
		fmt.Fprintf(out, "Run 'tracker-sync sync' to create the GitHub issue for %s.\n", added.ID)
		return nil
	}
	return syncAdded(ctx, cmd, cfg, added.ID)
}

// syncAdded creates the issue for a freshly added row. Missing
// authentication is a warning; the row stays unresolved for a later sync.
func syncAdded(ctx context.Context, cmd *cobra.Command, cfg types.Config, id string) error {
	engine, closeEngine, err := newEngine(ctx, cmd, cfg, false)
	if errors.Is(err, github.ErrNoCredential) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no GitHub authentication; %s left unresolved, run 'tracker-sync sync' later\n", id)
		return nil
	}
	if err != nil {
		return err
	}
	defer closeEngine()

	_, err = engine.SyncItem(ctx, id)
	return err
}

func init() {
	addIssueCmd.Flags().String("category", "Integration", "category of a testing task")
	addIssueCmd.Flags().String("component", "Dashboard", "component of a UI change")
	addIssueCmd.Flags().String("priority", "P1", "priority label")
	addIssueCmd.Flags().String("notes", "", "free-text notes")
	addIssueCmd.Flags().Bool("no-sync", false, "only add the row; do not create the GitHub issue")

	rootCmd.AddCommand(addIssueCmd)
}
