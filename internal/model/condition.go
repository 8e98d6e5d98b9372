package model

import (
	"errors"
	"fmt"
)

// ConditionKind discriminates the Condition tagged union.
type ConditionKind string

const (
	CondTime                 ConditionKind = "time"
	CondOutputContains       ConditionKind = "output_contains"
	CondOutputMatches        ConditionKind = "output_matches"
	CondStderrContains       ConditionKind = "stderr_contains"
	CondLastCommandSucceeded ConditionKind = "last_command_succeeded"
	CondLastCommandFailed    ConditionKind = "last_command_failed"
	CondLastCommandExitIs    ConditionKind = "last_command_exit_code_is"
	CondFileExists           ConditionKind = "file_exists"
	CondFileDoesNotExist     ConditionKind = "file_does_not_exist"
	CondDirExists            ConditionKind = "dir_exists"
	CondFileContains         ConditionKind = "file_contains"
	CondResponseStatusIs     ConditionKind = "response_status_is"
	CondResponseBodyContains ConditionKind = "response_body_contains"
	CondResponseBodyMatches  ConditionKind = "response_body_matches"
	CondJsonBodyHasPath      ConditionKind = "json_body_has_path"
	CondJsonPathEquals       ConditionKind = "json_path_equals"
	CondStateSucceeded       ConditionKind = "state_succeeded"

	// Supplemented from original_source/src/backend/system_backend.rs —
	// spec.md §4.5 describes these probes in prose but the §3 condition
	// list omits explicit tags for them; added here so they are reachable
	// as `then`/`given` conditions rather than orphaned backend methods.
	CondServiceIsRunning   ConditionKind = "service_is_running"
	CondServiceIsStopped   ConditionKind = "service_is_stopped"
	CondServiceIsInstalled ConditionKind = "service_is_installed"
	CondPortIsListening    ConditionKind = "port_is_listening"
	CondPortIsClosed       ConditionKind = "port_is_closed"
)

// TimeOp is the comparison operator for a Time condition.
type TimeOp string

const (
	TimeLT TimeOp = "<"
	TimeLE TimeOp = "<="
	TimeEQ TimeOp = "=="
	TimeGT TimeOp = ">"
	TimeGE TimeOp = ">="
)

// Condition is a single predicate evaluated against an EngineSnapshot.
type Condition struct {
	Kind ConditionKind `yaml:"kind"`

	Op      TimeOp  `yaml:"op,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`

	Text      string `yaml:"text,omitempty"`
	Regex     string `yaml:"regex,omitempty"`
	CaptureAs string `yaml:"capture_as,omitempty"`

	ExitCode int `yaml:"exit_code,omitempty"`

	Path    string `yaml:"path,omitempty"`
	Content string `yaml:"content,omitempty"`

	StatusCode int    `yaml:"status_code,omitempty"`
	Value      string `yaml:"value,omitempty"`
	JSONPath   string `yaml:"json_path,omitempty"`
	Expected   string `yaml:"expected,omitempty"`

	TestName string `yaml:"test_name,omitempty"`

	ServiceName string `yaml:"service_name,omitempty"`
	Port        int    `yaml:"port,omitempty"`
}

// Validate checks the fields required by this condition's Kind are present.
func (c *Condition) Validate() error {
	switch c.Kind {
	case CondTime:
		switch c.Op {
		case TimeLT, TimeLE, TimeEQ, TimeGT, TimeGE:
		default:
			return fmt.Errorf("time: invalid op %q", c.Op)
		}
	case CondOutputContains, CondStderrContains:
		if c.Text == "" {
			return fmt.Errorf("%s: text must be non-empty", c.Kind)
		}
	case CondOutputMatches, CondResponseBodyMatches:
		if c.Regex == "" {
			return fmt.Errorf("%s: regex must be non-empty", c.Kind)
		}
	case CondFileContains:
		if c.Path == "" {
			return errors.New("file_contains: path must be non-empty")
		}
	case CondFileExists, CondFileDoesNotExist, CondDirExists:
		if c.Path == "" {
			return fmt.Errorf("%s: path must be non-empty", c.Kind)
		}
	case CondResponseBodyContains:
		if c.Value == "" {
			return errors.New("response_body_contains: value must be non-empty")
		}
	case CondJsonBodyHasPath, CondJsonPathEquals:
		if c.JSONPath == "" {
			return fmt.Errorf("%s: json_path must be non-empty", c.Kind)
		}
	case CondStateSucceeded:
		if c.TestName == "" {
			return errors.New("state_succeeded: test_name must be non-empty")
		}
	case CondServiceIsRunning, CondServiceIsStopped, CondServiceIsInstalled:
		if c.ServiceName == "" {
			return fmt.Errorf("%s: service_name must be non-empty", c.Kind)
		}
	case CondPortIsListening, CondPortIsClosed:
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("%s: port must be in range 1-65535", c.Kind)
		}
	case "":
		return errors.New("kind must be set")
	}
	return nil
}
