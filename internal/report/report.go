// Package report builds and writes the suite's structured test report.
// JSON is the only format currently emitted; JUnit is accepted as a
// setting value but skipped with a warning, per spec.md §6.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/scheduler"
)

// Report is the top-level JSON document: one Feature per suite, matching
// the source's single-feature-per-run shape.
type Report struct {
	Features []Feature `json:"features"`
}

// Feature groups every scenario run in this suite under the suite's
// FeatureName statement (empty string if none was declared).
type Feature struct {
	URI      string     `json:"uri"`
	Keyword  string     `json:"keyword"`
	Name     string     `json:"name"`
	Elements []Scenario `json:"elements"`
	Summary  Summary    `json:"summary"`
}

// Scenario is one scheduler.ScenarioResult rendered for the report.
type Scenario struct {
	Keyword string     `json:"keyword"`
	Name    string     `json:"name"`
	Steps   []Step     `json:"steps"`
	After   []AfterRow `json:"after"`
}

// Step is one test case's reported outcome.
type Step struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Result      Result `json:"result"`
}

// AfterRow is one after-hook action rendered as a human-readable label
// plus its outcome (after actions never fail the test state, only the
// report records whether they errored).
type AfterRow struct {
	Name   string `json:"name"`
	Result Result `json:"result"`
}

// Result is the pass/fail/skip outcome shared by steps and after-rows.
type Result struct {
	Status       string `json:"status"`
	DurationInMs int64  `json:"duration_in_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Summary is the suite-wide roll-up.
type Summary struct {
	Tests              int     `json:"tests"`
	Failures           int     `json:"failures"`
	TotalTimeInSeconds float64 `json:"total_time_in_seconds"`
}

// Build renders a Report from one suite run's scenario results.
func Build(suiteName, featureName string, suiteDuration time.Duration, results []scheduler.ScenarioResult) *Report {
	scenarios := make([]Scenario, 0, len(results))
	tests := 0
	failures := 0

	for _, sr := range results {
		steps := make([]Step, 0, len(sr.Tests))
		for _, tr := range sr.Tests {
			tests++
			status := statusFor(tr.State)
			if status == "failed" {
				failures++
			}
			steps = append(steps, Step{
				Name:        tr.Name,
				Description: tr.Description,
				Result: Result{
					Status:       status,
					DurationInMs: tr.Duration.Milliseconds(),
					ErrorMessage: tr.Reason,
				},
			})
		}

		after := make([]AfterRow, 0, len(sr.After))
		for _, a := range sr.After {
			row := AfterRow{
				Name:   FormatAction(a.Action),
				Result: Result{Status: "passed"},
			}
			if a.Err != nil {
				row.Result.Status = "failed"
				row.Result.ErrorMessage = a.Err.Error()
			}
			after = append(after, row)
		}

		scenarios = append(scenarios, Scenario{
			Keyword: "Scenario",
			Name:    sr.Name,
			Steps:   steps,
			After:   after,
		})
	}

	return &Report{
		Features: []Feature{
			{
				URI:      suiteName,
				Keyword:  "Feature",
				Name:     featureName,
				Elements: scenarios,
				Summary: Summary{
					Tests:              tests,
					Failures:           failures,
					TotalTimeInSeconds: suiteDuration.Seconds(),
				},
			},
		},
	}
}

func statusFor(state model.TestState) string {
	switch state {
	case model.StatePassed:
		return "passed"
	case model.StateFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Write renders the report in the settings-declared format and writes it
// under reportPath, returning the path written. JUnit is reserved and
// currently not implemented; Write returns ("", nil) for it so the caller
// can log a warning without failing the run.
func Write(rep *Report, format, reportDir string, now time.Time) (string, error) {
	if format == "junit" {
		return "", nil
	}

	if err := os.MkdirAll(reportDir, 0750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("choreo_test_report_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(reportDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := encode(f, rep); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return path, nil
}

func encode(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
