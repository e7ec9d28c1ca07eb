package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tracker-sync version",
	Long: `Version prints the tracker-sync release. With --verbose it also prints the
Go runtime, the config file in use, and the repository and tracker document
the current settings point at.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "tracker-sync %s\n", version)
	if !verbose {
		return nil
	}

	fmt.Fprintf(out, "go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(none)"
	}
	fmt.Fprintf(out, "config:     %s\n", configFile)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "repository: %s\n", cfg.GitHub.Slug())
	fmt.Fprintf(out, "tracker:    %s\n", cfg.Tracker.Path)
	return nil
}

func init() {
	versionCmd.Flags().Bool("verbose", false, "also print runtime and configuration details")

	rootCmd.AddCommand(versionCmd)
}
