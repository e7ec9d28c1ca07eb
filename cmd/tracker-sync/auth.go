// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iplixera/nivostack-monorepo/internal/github"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Report which GitHub authentication method is in use",
	Long: `Auth walks the authentication chain (gh CLI, token environment variable,
token file) the way sync does and reports the first method that works.
Tokens are checked against the GitHub API before they are accepted.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	cred, err := authenticate(ctx, cfg, cmd.ErrOrStderr())
	if errors.Is(err, github.ErrNoCredential) {
		return noCredentialError(cmd, cfg)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cred.Login != "" {
		fmt.Fprintf(out, "Authenticated via %s as %s\n", cred.Source, cred.Login)
	} else {
		fmt.Fprintf(out, "Authenticated via %s\n", cred.Source)
	}
	fmt.Fprintf(out, "Repository: %s\n", cfg.GitHub.Slug())
	return nil
}

func init() {
	rootCmd.AddCommand(authCmd)
}
