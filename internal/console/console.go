// Package console renders scheduler progress and the final suite summary
// to the terminal: a colored line for each test that passes or fails, an
// optional verbose spinner, and a summary table. The per-test lines carry
// no elapsed time, and skipped tests get no line of their own; they are
// counted only in the report.
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cladam/choreo/internal/report"
)

// Console implements scheduler.EventSink, writing colored progress lines
// to Out (typically os.Stdout). Verbose gates the noisier progress lines
// (scenario/test-start announcements, unhandled-action warnings, the
// spinner) — pass/fail lines always print.
type Console struct {
	Out     io.Writer
	Verbose bool

	spin *spinner.Spinner
}

// New returns a Console writing to out.
func New(out io.Writer, verbose bool) *Console {
	return &Console{Out: out, Verbose: verbose}
}

func (c *Console) ScenarioStarted(name string) {
	if !c.Verbose {
		return
	}
	fmt.Fprintln(c.Out)
	color.New(color.FgCyan).Fprintf(c.Out, "Running scenario: '%s'\n", name)
	c.spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	c.spin.Writer = c.Out
	c.spin.Start()
}

func (c *Console) stopSpinner() {
	if c.spin != nil && c.spin.Active() {
		c.spin.Stop()
	}
}

func (c *Console) TestStarted(name string, async bool) {
	if !c.Verbose {
		return
	}
	c.stopSpinner()
	kind := "ASYNC"
	marker := "▶ "
	if !async {
		kind = "SYNC"
		marker = "▶️ "
	}
	color.New(color.FgBlue).Fprintf(c.Out, " %sStarting %s test: %s\n", marker, kind, name)
	if c.spin != nil {
		c.spin.Start()
	}
}

func (c *Console) TestPassed(name string) {
	c.stopSpinner()
	color.New(color.FgGreen).Fprintf(c.Out, " 🟢 Test Passed: %s\n", name)
	if c.spin != nil {
		c.spin.Start()
	}
}

func (c *Console) TestFailed(name, reason string) {
	c.stopSpinner()
	color.New(color.FgRed).Fprintf(c.Out, " 🔴 Test Failed: %s - %s\n", name, reason)
	if c.spin != nil {
		c.spin.Start()
	}
}

func (c *Console) AfterBlockStarted(scenario string) {
	c.stopSpinner()
	if !c.Verbose {
		return
	}
	color.New(color.FgCyan).Fprintln(c.Out, "\nRunning after block...")
}

func (c *Console) StopOnFailure(scenario string) {
	c.stopSpinner()
	color.New(color.FgRed).Fprintln(c.Out, "\nStopping test run due to failure (stop_on_failure is true).")
}

func (c *Console) UnhandledAction(kind string) {
	if !c.Verbose {
		return
	}
	color.New(color.FgYellow).Fprintf(c.Out, "warning: no backend handled action %q\n", kind)
}

// PrintSummary renders the suite's final test/failure counts and total
// duration as a table, the JSON report remaining authoritative for
// machine consumption per spec.md §7.
func (c *Console) PrintSummary(summary report.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(c.Out)
	t.AppendHeader(table.Row{"Tests", "Failures", "Total Time (s)"})
	t.AppendRow(table.Row{summary.Tests, summary.Failures, fmt.Sprintf("%.2f", summary.TotalTimeInSeconds)})
	t.Render()

	if summary.Failures == 0 {
		color.New(color.FgGreen, color.Bold).Fprintln(c.Out, "All tests passed.")
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(c.Out, "%d test(s) failed.\n", summary.Failures)
	}
}
