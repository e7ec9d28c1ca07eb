// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iplixera/nivostack-monorepo/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync attempts from the journal",
	Long: `History prints the newest entries of the local sync journal: each issue
created, each number written back, and each failure, with the run it
belongs to. Use --export yaml or json for the full records.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	export, _ := cmd.Flags().GetString("export")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled (journal.enabled: false)")
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	switch export {
	case "yaml":
		return store.ExportYAML(ctx, out, limit)
	case "json":
		return store.ExportJSON(ctx, out, limit)
	case "":
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", export)
	}

	entries, err := store.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No sync attempts recorded.")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %-9s %s", e.At.Local().Format("2006-01-02 15:04:05"), e.ItemID, e.State, e.Repo)
		if e.Issue > 0 {
			line += fmt.Sprintf(" #%d", e.Issue)
		}
		if e.Error != "" {
			line += " (" + e.Error + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 50, "maximum number of entries")
	historyCmd.Flags().String("export", "", "export format: yaml or json")

	rootCmd.AddCommand(historyCmd)
}
