package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cladam/choreo/internal/config"
	"github.com/cladam/choreo/internal/suite"
)

// RunExitCode is set by runSuite to communicate the desired process exit
// code once Execute returns without error: 0 when every test passed, 1
// when the suite ran to completion with one or more test failures. A
// fatal parse/setup error is instead returned from runSuite itself, and
// main.go exits 2 in that case.
var RunExitCode int

var (
	runFile    string
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a choreography file",
	Long: `Run loads the given YAML choreography, executes every scenario in
declared order, and writes a JSON report alongside a colored terminal
summary.`,
	RunE: runSuite,
}

const defaultSuiteFile = "test.chor"

func init() { //nolint:gochecknoinits
	defaults := config.Load()
	file := defaults.File
	if file == "" {
		file = defaultSuiteFile
	}

	runCmd.Flags().StringVarP(&runFile, "file", "f", file, "path to the choreography file (CHOREO_FILE)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", defaults.Verbose, "print per-test progress as the suite runs (CHOREO_VERBOSE)")
	rootCmd.AddCommand(runCmd)
}

func runSuite(cmd *cobra.Command, _ []string) error {
	RunExitCode = 0

	outcome, err := suite.Run(suite.Options{
		FilePath: runFile,
		Verbose:  runVerbose,
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		RunExitCode = 2
		return fmt.Errorf("run suite: %w", err)
	}

	if outcome.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outcome.ReportPath)
	}

	if outcome.Report.Features[0].Summary.Failures > 0 {
		RunExitCode = 1
	}
	return nil
}
