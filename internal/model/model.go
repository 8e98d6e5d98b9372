// Package model defines the data model of a parsed choreography: the
// ordered statements, scenarios, test cases, and the tagged action and
// condition variants the scheduler consumes.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// TestSuite is an ordered sequence of Statements. Order of definition is
// preserved; the scheduler consumes only Scenario statements plus the
// merged Settings/Vars/Env statements.
type TestSuite struct {
	Statements []Statement `yaml:"statements"`
}

// Validate checks every statement and every scenario name is unique.
func (s *TestSuite) Validate() error {
	if len(s.Statements) == 0 {
		return errors.New("suite must contain at least one statement")
	}
	seen := make(map[string]bool)
	for i, st := range s.Statements {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
		if st.Scenario != nil {
			if seen[st.Scenario.Name] {
				return fmt.Errorf("statement %d: duplicate scenario name %q", i, st.Scenario.Name)
			}
			seen[st.Scenario.Name] = true
		}
	}
	return nil
}

// Scenarios returns every Scenario statement's payload, in declared order.
func (s *TestSuite) Scenarios() []*Scenario {
	var out []*Scenario
	for i := range s.Statements {
		if s.Statements[i].Scenario != nil {
			out = append(out, s.Statements[i].Scenario)
		}
	}
	return out
}

// Settings returns the merged TestSuiteSettings, last one wins if more
// than one Settings statement is present.
func (s *TestSuite) Settings() TestSuiteSettings {
	out := DefaultSettings()
	for i := range s.Statements {
		if s.Statements[i].Settings != nil {
			out = *s.Statements[i].Settings
		}
	}
	return out
}

// EnvImports returns every name listed across all EnvImport statements,
// in declared order.
func (s *TestSuite) EnvImports() []string {
	var out []string
	for i := range s.Statements {
		out = append(out, s.Statements[i].EnvImport...)
	}
	return out
}

// Vars returns the merged mapping from every Vars statement, later
// statements overriding earlier ones for the same name.
func (s *TestSuite) Vars() map[string]string {
	out := make(map[string]string)
	for i := range s.Statements {
		for k, v := range s.Statements[i].Vars {
			out[k] = v
		}
	}
	return out
}

// Statement is a tagged union over the TestSuite's top-level elements.
// Exactly one field is set per instance (enforced loosely — the loader
// trusts well-formed input, matching the teacher's Validate-after-decode
// idiom rather than a custom UnmarshalYAML per variant).
type Statement struct {
	FeatureName string             `yaml:"feature_name,omitempty"`
	Settings    *TestSuiteSettings `yaml:"settings,omitempty"`
	EnvImport   []string           `yaml:"env_import,omitempty"`
	Vars        map[string]string  `yaml:"vars,omitempty"`
	ActorNames  []string           `yaml:"actor_names,omitempty"`
	Scenario    *Scenario          `yaml:"scenario,omitempty"`
}

// Validate checks the active variant is internally consistent.
func (s *Statement) Validate() error {
	if s.Scenario != nil {
		return s.Scenario.Validate()
	}
	return nil
}

// TestSuiteSettings carries the recognized suite-wide options.
type TestSuiteSettings struct {
	ShellPath      string `yaml:"shell_path,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	StopOnFailure  bool   `yaml:"stop_on_failure"`
	ReportFormat   string `yaml:"report_format,omitempty"`
	ReportPath     string `yaml:"report_path,omitempty"`
}

// DefaultSettings returns the baseline settings applied before any
// Settings statement is merged in.
func DefaultSettings() TestSuiteSettings {
	return TestSuiteSettings{
		TimeoutSeconds: 10,
		ReportFormat:   "json",
		ReportPath:     ".",
	}
}

// Scenario groups tests that share one terminal session and one after block.
type Scenario struct {
	Name  string     `yaml:"name"`
	Tests []TestCase `yaml:"tests"`
	After []Action   `yaml:"after,omitempty"`
}

// Validate checks the scenario has a name, at least one test, and that
// test names are unique within it.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name must be non-empty")
	}
	if len(s.Tests) == 0 {
		return fmt.Errorf("scenario %q: tests must contain at least one test", s.Name)
	}
	seen := make(map[string]bool)
	for i, t := range s.Tests {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("scenario %q: test %d: %w", s.Name, i, err)
		}
		if seen[t.Name] {
			return fmt.Errorf("scenario %q: duplicate test name %q", s.Name, t.Name)
		}
		seen[t.Name] = true
	}
	for i, a := range s.After {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("scenario %q: after %d: %w", s.Name, i, err)
		}
	}
	return nil
}

// TestCase is a single Given/When/Then unit.
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Given       []GivenStep `yaml:"given,omitempty"`
	When        []Action    `yaml:"when,omitempty"`
	Then        []Condition `yaml:"then"`
}

// Validate checks the test has a name and at least one then-condition.
func (t *TestCase) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("name must be non-empty")
	}
	if len(t.Then) == 0 {
		return fmt.Errorf("test %q: then must contain at least one condition", t.Name)
	}
	for i, g := range t.Given {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("test %q: given %d: %w", t.Name, i, err)
		}
	}
	for i, a := range t.When {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("test %q: when %d: %w", t.Name, i, err)
		}
	}
	for i, c := range t.Then {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("test %q: then %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// GivenStep is either a pre-condition to wait on or a setup action to run.
type GivenStep struct {
	Condition *Condition `yaml:"condition,omitempty"`
	Action    *Action    `yaml:"action,omitempty"`
}

// Validate checks exactly one of Condition/Action is set and valid.
func (g *GivenStep) Validate() error {
	if g.Condition == nil && g.Action == nil {
		return errors.New("must set either condition or action")
	}
	if g.Condition != nil && g.Action != nil {
		return errors.New("condition and action are mutually exclusive")
	}
	if g.Condition != nil {
		return g.Condition.Validate()
	}
	return g.Action.Validate()
}

// Conditions returns the Condition half of given, in order.
func Conditions(given []GivenStep) []Condition {
	var out []Condition
	for _, g := range given {
		if g.Condition != nil {
			out = append(out, *g.Condition)
		}
	}
	return out
}

// Actions returns the Action half of given, in order.
func Actions(given []GivenStep) []Action {
	var out []Action
	for _, g := range given {
		if g.Action != nil {
			out = append(out, *g.Action)
		}
	}
	return out
}

// TestState is the terminal-or-not state of one TestCase.
type TestState int

const (
	StatePending TestState = iota
	StateRunning
	StatePassed
	StateFailed
	StateSkipped
)

func (s TestState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state is Passed, Failed, or Skipped.
func (s TestState) IsTerminal() bool {
	return s == StatePassed || s == StateFailed || s == StateSkipped
}
