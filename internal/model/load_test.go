package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSuite() *TestSuite {
	return &TestSuite{Statements: []Statement{
		{FeatureName: "smoke"},
		{Settings: &TestSuiteSettings{ShellPath: "/bin/bash", TimeoutSeconds: 5}},
		{EnvImport: []string{"HOME"}},
		{Vars: map[string]string{"greeting": "hello"}},
		{Scenario: &Scenario{
			Name: "scenario one",
			Tests: []TestCase{
				{
					Name: "test one",
					When: []Action{{Kind: ActionRun, Command: "echo ${greeting}"}},
					Then: []Condition{{Kind: CondOutputContains, Text: "hello"}},
				},
				{
					Name: "test two",
					Given: []GivenStep{
						{Condition: &Condition{Kind: CondStateSucceeded, TestName: "test one"}},
					},
					When: []Action{{Kind: ActionRun, Command: "echo second"}},
					Then: []Condition{{Kind: CondOutputContains, Text: "second"}},
				},
			},
			After: []Action{{Kind: ActionDeleteFile, Path: "tmp.txt"}},
		}},
	}}
}

func TestLoad_RoundTripPreservesOrder(t *testing.T) {
	orig := sampleSuite()
	data, err := Marshal(orig)
	require.NoError(t, err)

	loaded, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)

	require.Len(t, loaded.Statements, len(orig.Statements))
	for i := range orig.Statements {
		assert.Equal(t, orig.Statements[i], loaded.Statements[i], "statement %d", i)
	}

	scenarios := loaded.Scenarios()
	require.Len(t, scenarios, 1)
	require.Len(t, scenarios[0].Tests, 2)
	assert.Equal(t, "test one", scenarios[0].Tests[0].Name)
	assert.Equal(t, "test two", scenarios[0].Tests[1].Name)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	const doc = `
statements:
  - scenario:
      name: s1
      bogus_field: true
      tests:
        - name: t1
          then:
            - kind: last_command_succeeded
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoad_EmptyFileIsError(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty suite file")
}

func TestLoad_InvalidSuiteIsError(t *testing.T) {
	const doc = `
statements:
  - scenario:
      name: ""
      tests: []
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}
