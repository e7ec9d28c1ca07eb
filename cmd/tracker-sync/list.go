// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the items of the tracker",
	Long: `List parses the tracker document and prints every TEST and UI item with
its status and GitHub issue. Use --unresolved to show only rows without an
issue, and --format json or yaml for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	unresolved, _ := cmd.Flags().GetBool("unresolved")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := trackerFile(cfg).Load()
	if err != nil {
		return err
	}
	for _, d := range doc.Diagnostics {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d)
	}

	items := doc.Items()
	if unresolved {
		var open []types.TrackerItem
		for _, it := range items {
			if !it.Issue.Resolved() {
				open = append(open, it)
			}
		}
		items = open
	}
	return renderItems(cmd.OutOrStdout(), items, format)
}

// renderItems writes items in the given format: table, json, or yaml.
func renderItems(w io.Writer, items []types.TrackerItem, format string) error {
	switch format {
	case "", "table":
		renderTable(w, items)
		return nil
	case "json":
		if items == nil {
			items = []types.TrackerItem{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encoding items: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
}

var statusColors = map[types.Status]lipgloss.Color{
	types.StatusNotStarted: lipgloss.Color("8"),
	types.StatusInProgress: lipgloss.Color("4"),
	types.StatusBlocked:    lipgloss.Color("1"),
	types.StatusDone:       lipgloss.Color("2"),
}

const (
	columnWidthID     = 10
	columnWidthStatus = 13
	columnWidthIssue  = 8
)

func renderTable(w io.Writer, items []types.TrackerItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	idStyle := lipgloss.NewStyle().Width(columnWidthID)
	issueStyle := lipgloss.NewStyle().Width(columnWidthIssue)

	fmt.Fprintln(w, headerStyle.Render(
		pad("ID", columnWidthID)+pad("STATUS", columnWidthStatus)+pad("ISSUE", columnWidthIssue)+"TITLE"))

	for _, it := range items {
		statusText := string(it.Status)
		if statusText == "" {
			statusText = strings.TrimSpace(it.StatusCell)
		}
		statusStyle := lipgloss.NewStyle().Width(columnWidthStatus)
		if c, ok := statusColors[it.Status]; ok {
			statusStyle = statusStyle.Foreground(c)
		}

		title := it.Title
		if it.Classifier != "" {
			title += " (" + it.Classifier + ", " + it.Priority + ")"
		}
		fmt.Fprintln(w, idStyle.Render(it.ID)+statusStyle.Render(statusText)+issueStyle.Render(it.Issue.String())+title)
	}
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func init() {
	listCmd.Flags().Bool("unresolved", false, "only items without a GitHub issue")
	listCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(listCmd)
}
