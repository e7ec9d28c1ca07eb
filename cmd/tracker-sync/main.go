// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tracker-sync CLI. It keeps a
// markdown tracker document and the repository's GitHub issues in step:
// sync creates issues for unresolved rows, add-issue appends rows, and
// update-status rewrites a row's status.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tracker-sync CLI.
var rootCmd = &cobra.Command{
	Use:   "tracker-sync",
	Short: "Sync a markdown task tracker with GitHub issues",
	Long: `tracker-sync treats a markdown tracker document as the source of truth
for testing tasks (TEST-NNN) and UI changes (UI-NNN). Rows whose GitHub Issue
column holds "-" are unresolved; sync creates an issue for each and writes
the number back into the row.

Authentication tries the gh CLI first, then the token environment variable,
then the token file. Use sync --dry-run to preview without credentials.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tracker-sync.yaml or ~/.config/tracker-sync/tracker-sync.yaml)")
	rootCmd.PersistentFlags().String("tracker", "", "tracker document (overrides tracker.path)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tracker-sync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tracker-sync"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("TRACKER_SYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
