package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cladam/choreo/internal/report"
	"github.com/cladam/choreo/internal/scheduler"
)

// compile-time assertion that Console satisfies scheduler.EventSink.
var _ scheduler.EventSink = (*Console)(nil)

func TestTestPassed_WritesPassLine(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.TestPassed("echoes hello")
	assert.Contains(t, buf.String(), "Test Passed: echoes hello")
}

func TestTestFailed_WritesReason(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.TestFailed("sleeps too long", "Command timed out")
	assert.Contains(t, buf.String(), "sleeps too long")
	assert.Contains(t, buf.String(), "Command timed out")
}

func TestScenarioStarted_OnlyLogsWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.ScenarioStarted("s1")
	assert.Empty(t, buf.String())
}

func TestPrintSummary_AllPassed(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.PrintSummary(report.Summary{Tests: 3, Failures: 0, TotalTimeInSeconds: 1.5})
	assert.Contains(t, buf.String(), "All tests passed")
}

func TestPrintSummary_WithFailures(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.PrintSummary(report.Summary{Tests: 3, Failures: 1, TotalTimeInSeconds: 1.5})
	assert.Contains(t, buf.String(), "1 test(s) failed")
}
