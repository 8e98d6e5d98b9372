// Package suite orchestrates one end-to-end run: load the suite file,
// seed the variable store from vars and imported environment variables,
// wire the stateful backends and the scheduler, run every scenario, and
// write the report. It is the only package that knows how all the other
// internal packages fit together.
package suite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/cladam/choreo/internal/console"
	"github.com/cladam/choreo/internal/fsbackend"
	"github.com/cladam/choreo/internal/httpbackend"
	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/report"
	"github.com/cladam/choreo/internal/scheduler"
	"github.com/cladam/choreo/internal/shell"
	"github.com/cladam/choreo/internal/sysbackend"
	"github.com/cladam/choreo/internal/vars"
)

// Options configures one suite run.
type Options struct {
	FilePath string
	Verbose  bool
	Out      io.Writer
}

// Outcome is the result of a completed suite run (parse/setup failures
// never reach here; they are returned as an error from Run instead).
type Outcome struct {
	Report     *report.Report
	ReportPath string
}

// Run loads and executes the suite at opts.FilePath. A non-nil error means
// a fatal failure (spec.md §7, exit code 2 at the CLI layer): a parse/setup
// failure before any scenario ran, a scenario whose terminal backend could
// not start, or a report that could not be written. Test failures are
// recorded per-test in the returned Outcome instead (exit code 1 at the CLI
// layer when Outcome.Report's summary has any failures).
func Run(opts Options) (Outcome, error) {
	absPath, err := filepath.Abs(opts.FilePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve suite path: %w", err)
	}

	ts, err := model.LoadFile(absPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("load suite: %w", err)
	}

	baseDir := filepath.Dir(absPath)

	// Optional .env preload alongside the suite file; a missing file is not
	// an error, only a malformed one is.
	envFile := filepath.Join(baseDir, ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		if loadErr := godotenv.Load(envFile); loadErr != nil {
			return Outcome{}, fmt.Errorf("load .env: %w", loadErr)
		}
	}

	store := vars.New()
	store.Seed(ts.Vars())

	for _, name := range ts.EnvImports() {
		value, ok := os.LookupEnv(name)
		if !ok {
			return Outcome{}, fmt.Errorf("missing imported environment variable %q", name)
		}
		store.Set(name, value)
	}

	settings := ts.Settings()
	if settings.ShellPath == "" {
		settings.ShellPath = shell.Default()
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	sink := console.New(out, opts.Verbose)

	sched := &scheduler.Scheduler{
		ShellPath:  settings.ShellPath,
		BaseDir:    baseDir,
		Settings:   settings,
		Filesystem: fsbackend.New(baseDir),
		HTTP:       httpbackend.New(opts.Verbose),
		System:     sysbackend.New(opts.Verbose),
		Store:      store,
		Sink:       sink,
		Verbose:    opts.Verbose,
	}

	start := time.Now()
	results, runErr := sched.Run(ts.Scenarios())
	duration := time.Since(start)
	if runErr != nil {
		return Outcome{}, fmt.Errorf("run suite: %w", runErr)
	}
	for _, r := range results {
		if r.AfterErr != nil {
			fmt.Fprintf(out, "warning: after block of scenario %q: %v\n", r.Name, r.AfterErr)
		}
	}

	rep := report.Build(absPath, featureName(ts), duration, results)
	sink.PrintSummary(rep.Features[0].Summary)

	reportPath, writeErr := report.Write(rep, settings.ReportFormat, settings.ReportPath, time.Now())
	if writeErr != nil {
		return Outcome{Report: rep}, fmt.Errorf("write report: %w", writeErr)
	}
	if settings.ReportFormat == "junit" {
		fmt.Fprintln(out, "JUnit report format is not yet supported. Skipping report generation.")
	}

	return Outcome{Report: rep, ReportPath: reportPath}, nil
}

func featureName(ts *model.TestSuite) string {
	name := ""
	for _, st := range ts.Statements {
		if st.FeatureName != "" {
			name = st.FeatureName
		}
	}
	return name
}
