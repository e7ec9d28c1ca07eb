// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iplixera/nivostack-monorepo/internal/status"
	"github.com/iplixera/nivostack-monorepo/internal/tracker"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

var updateStatusCmd = &cobra.Command{
	Use:   "update-status <id|#issue> <status>",
	Short: "Set the status of a tracker row",
	Long: `Update-status rewrites the Status cell of one row, addressed by its
identifier (TEST-007, UI-003) or by its GitHub issue number (#42 or 42).
The status is free text and is mapped to Not Started, In Progress, Blocked,
or Done; for example "wip" becomes In Progress and "finished" becomes Done.
Only the status cell of that row changes.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdateStatus,
}

func runUpdateStatus(cmd *cobra.Command, args []string) error {
	ref := strings.TrimSpace(args[0])
	free := strings.Join(args[1:], " ")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	doc := trackerFile(cfg)
	var id string
	var written types.Status
	err = doc.Update(ctx, func(text string) (string, error) {
		resolved, err := resolveRef(tracker.Parse(text), ref)
		if err != nil {
			return "", err
		}
		id = resolved
		next, s, err := status.Update(text, id, free)
		written = s
		return next, err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated: %s -> %s\n", id, written.Cell())
	return nil
}

// resolveRef maps an item identifier or an issue reference to an item
// identifier.
func resolveRef(doc *tracker.Document, ref string) (string, error) {
	if _, ok := parseIDRef(ref); ok {
		id := strings.ToUpper(ref)
		if doc.Ambiguous(id) {
			return "", fmt.Errorf("%w: %s", tracker.ErrAmbiguousID, id)
		}
		if _, ok := doc.Find(id); !ok {
			return "", fmt.Errorf("%w: %s", tracker.ErrItemNotFound, id)
		}
		return id, nil
	}

	if !strings.HasPrefix(ref, "#") {
		ref = "#" + ref
	}
	n, err := types.ParseIssueRef(ref)
	if err != nil || !n.Resolved() {
		return "", fmt.Errorf("%w: %q is neither an item id nor an issue number", tracker.ErrItemNotFound, ref)
	}
	rec, ok := doc.FindByIssue(n)
	if !ok {
		return "", fmt.Errorf("%w: no row references %s", tracker.ErrItemNotFound, n)
	}
	return rec.Item.ID, nil
}

// parseIDRef reports whether ref looks like TEST-NNN or UI-NNN.
func parseIDRef(ref string) (types.Prefix, bool) {
	head, _, ok := strings.Cut(ref, "-")
	if !ok {
		return "", false
	}
	return types.ParsePrefix(head)
}

func init() {
	rootCmd.AddCommand(updateStatusCmd)
}
