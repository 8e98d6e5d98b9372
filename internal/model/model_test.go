package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name        string
		scenario    Scenario
		wantErr     bool
		errContains string
	}{
		{
			name: "valid scenario with single test",
			scenario: Scenario{
				Name: "echo capture",
				Tests: []TestCase{
					{
						Name: "echoes hello",
						When: []Action{{Kind: ActionRun, Command: "echo hello"}},
						Then: []Condition{{Kind: CondOutputContains, Text: "hello"}},
					},
				},
			},
			wantErr: false,
		},
		{
			name:        "missing name",
			scenario:    Scenario{Tests: []TestCase{{Name: "t", Then: []Condition{{Kind: CondLastCommandSucceeded}}}}},
			wantErr:     true,
			errContains: "name must be non-empty",
		},
		{
			name:        "no tests",
			scenario:    Scenario{Name: "empty"},
			wantErr:     true,
			errContains: "at least one test",
		},
		{
			name: "duplicate test name",
			scenario: Scenario{
				Name: "dupes",
				Tests: []TestCase{
					{Name: "t1", Then: []Condition{{Kind: CondLastCommandSucceeded}}},
					{Name: "t1", Then: []Condition{{Kind: CondLastCommandFailed}}},
				},
			},
			wantErr:     true,
			errContains: "duplicate test name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTestCase_Validate_RequiresThen(t *testing.T) {
	tc := TestCase{Name: "no-then"}
	err := tc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "then must contain")
}

func TestGivenStep_Validate_MutuallyExclusive(t *testing.T) {
	cond := Condition{Kind: CondLastCommandSucceeded}
	act := Action{Kind: ActionLog, Message: "hi"}

	g := GivenStep{Condition: &cond, Action: &act}
	require.Error(t, g.Validate())

	g2 := GivenStep{}
	require.Error(t, g2.Validate())

	g3 := GivenStep{Condition: &cond}
	require.NoError(t, g3.Validate())
}

func TestConditionsAndActions_SplitGiven(t *testing.T) {
	cond := Condition{Kind: CondStateSucceeded, TestName: "A"}
	act := Action{Kind: ActionLog, Message: "setup"}
	given := []GivenStep{{Condition: &cond}, {Action: &act}}

	assert.Equal(t, []Condition{cond}, Conditions(given))
	assert.Equal(t, []Action{act}, Actions(given))
}

func TestTestSuite_SettingsMergeLastWins(t *testing.T) {
	s1 := TestSuiteSettings{TimeoutSeconds: 5}
	s2 := TestSuiteSettings{TimeoutSeconds: 30, StopOnFailure: true}
	suite := TestSuite{Statements: []Statement{
		{Settings: &s1},
		{Settings: &s2},
	}}
	got := suite.Settings()
	assert.Equal(t, 30, got.TimeoutSeconds)
	assert.True(t, got.StopOnFailure)
}

func TestTestSuite_VarsMergeOverride(t *testing.T) {
	suite := TestSuite{Statements: []Statement{
		{Vars: map[string]string{"a": "1", "b": "2"}},
		{Vars: map[string]string{"b": "3"}},
	}}
	got := suite.Vars()
	assert.Equal(t, "1", got["a"])
	assert.Equal(t, "3", got["b"])
}

func TestTestState_IsTerminal(t *testing.T) {
	assert.False(t, StatePending.IsTerminal())
	assert.False(t, StateRunning.IsTerminal())
	assert.True(t, StatePassed.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.True(t, StateSkipped.IsTerminal())
}

func TestAction_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"type requires content", Action{Kind: ActionType}, true},
		{"type ok", Action{Kind: ActionType, Content: "x"}, false},
		{"run requires command", Action{Kind: ActionRun}, true},
		{"create_file requires path", Action{Kind: ActionCreateFile}, true},
		{"read_file requires path and variable", Action{Kind: ActionReadFile, Path: "a"}, true},
		{"uuid requires variable", Action{Kind: ActionUuid}, true},
		{"http_get requires url", Action{Kind: ActionHttpGet}, true},
		{"empty kind", Action{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCondition_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		wantErr   bool
	}{
		{"time requires valid op", Condition{Kind: CondTime, Op: "bogus"}, true},
		{"time ok", Condition{Kind: CondTime, Op: TimeGE, Seconds: 1}, false},
		{"output_contains requires text", Condition{Kind: CondOutputContains}, true},
		{"output_matches requires regex", Condition{Kind: CondOutputMatches}, true},
		{"state_succeeded requires test_name", Condition{Kind: CondStateSucceeded}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.condition.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
