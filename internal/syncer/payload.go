// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"fmt"
	"strings"

	"github.com/iplixera/nivostack-monorepo/internal/github"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// BuildPayload renders the remote issue for a tracker item.
func BuildPayload(item types.TrackerItem) github.NewIssue {
	status := item.StatusCell
	if status == "" {
		status = item.Status.Cell()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Type**: %s\n", item.Prefix.TypeName())
	fmt.Fprintf(&b, "**%s**: %s\n", item.Prefix.ClassifierLabel(), item.Classifier)
	fmt.Fprintf(&b, "**Priority**: %s\n", item.Priority)
	fmt.Fprintf(&b, "**Status**: %s\n", status)
	b.WriteString("\n**Description**:\n")
	b.WriteString(item.Notes)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "*Created from tracker: %s*", item.ID)

	return github.NewIssue{
		Title:  item.Prefix.TitleTag() + " " + item.Title,
		Body:   b.String(),
		Labels: item.Prefix.Labels(),
	}
}
