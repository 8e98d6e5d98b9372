// Package cmd implements the choreo Cobra command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "choreo",
	Short: "Behaviour-driven CLI scenario runner",
	Long: `choreo - Behaviour-driven CLI scenario runner

Run a YAML choreography of scenarios, each a set of given/when/then
tests sharing one terminal session, against the real shell, filesystem,
and HTTP endpoints it describes.

Examples:
  # Run a suite
  choreo run --file suite.chor.yaml

  # Run with verbose progress output
  choreo run --file suite.chor.yaml --verbose`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("choreo version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
}
