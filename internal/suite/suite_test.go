package suite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoSuite = `
statements:
  - feature_name: "Echo suite"
  - settings:
      shell_path: /bin/sh
      timeout_seconds: 2
      report_format: json
      report_path: "reports"
  - scenario:
      name: "says hello"
      tests:
        - name: "echoes a greeting"
          when:
            - kind: run
              command: "echo hello-world"
          then:
            - kind: output_contains
              text: "hello-world"
`

func writeSuite(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "suite.chor")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_EndToEndWritesReport(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, echoSuite)

	var buf bytes.Buffer
	outcome, err := Run(Options{FilePath: path, Out: &buf})
	require.NoError(t, err)

	require.NotNil(t, outcome.Report)
	assert.Equal(t, "Echo suite", outcome.Report.Features[0].Name)
	assert.Equal(t, 1, outcome.Report.Features[0].Summary.Tests)
	assert.Equal(t, 0, outcome.Report.Features[0].Summary.Failures)
	require.NotEmpty(t, outcome.ReportPath)

	data, err := os.ReadFile(outcome.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echoes a greeting")
}

func TestRun_MissingEnvImportIsFatal(t *testing.T) {
	dir := t.TempDir()
	content := `
statements:
  - env_import: ["CHOREO_TEST_DOES_NOT_EXIST"]
  - scenario:
      name: "never runs"
      tests:
        - name: "noop"
          when:
            - kind: run
              command: "true"
          then:
            - kind: last_command_succeeded
`
	path := writeSuite(t, dir, content)

	_, err := Run(Options{FilePath: path, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHOREO_TEST_DOES_NOT_EXIST")
}

func TestRun_InvalidSuiteIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "not: [valid")

	_, err := Run(Options{FilePath: path, Out: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestRun_ImportedVariableIsAvailableToSubstitution(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHOREO_GREETING", "hi-there")
	content := `
statements:
  - env_import: ["CHOREO_GREETING"]
  - scenario:
      name: "uses an imported var"
      tests:
        - name: "echoes the imported value"
          when:
            - kind: run
              command: "echo ${CHOREO_GREETING}"
          then:
            - kind: output_contains
              text: "hi-there"
`
	path := writeSuite(t, dir, content)

	outcome, err := Run(Options{FilePath: path, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Report.Features[0].Summary.Failures)
}
