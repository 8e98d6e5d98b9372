package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:    "update",
	Short:  "Update choreo to the latest version",
	Hidden: true,
	RunE:   runUpdate,
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "choreo %s is already the latest version available to this build.\n", Version)
	return nil
}
