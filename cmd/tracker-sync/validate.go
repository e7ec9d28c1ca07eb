// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report tracker rows the parser cannot trust",
	Long: `Validate parses the tracker document and prints one line per problem:
rows with the wrong number of columns, unreadable issue references, unknown
statuses, duplicate identifiers, and rows outside or under the wrong table.
It exits non-zero when any problem is found.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := trackerFile(cfg).Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range doc.Diagnostics {
		fmt.Fprintln(out, d)
	}
	items := doc.Items()
	if len(doc.Diagnostics) > 0 {
		return fmt.Errorf("%s: %d problem(s) in %d item(s)", cfg.Tracker.Path, len(doc.Diagnostics), len(items))
	}
	fmt.Fprintf(out, "%s: %d item(s), no problems\n", cfg.Tracker.Path, len(items))
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
