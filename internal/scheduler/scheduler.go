// Package scheduler implements the per-scenario cooperative scheduler: it
// advances every test case in a scenario through Pending→Running→terminal,
// polling conditions against a fresh terminal session and the suite-wide
// filesystem/HTTP/system backends, honoring per-test timeouts, sync vs
// async evaluation, and stop_on_failure.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/cladam/choreo/internal/condition"
	"github.com/cladam/choreo/internal/dispatch"
	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/termbackend"
	"github.com/cladam/choreo/internal/vars"
)

const defaultTickInterval = 200 * time.Millisecond

// TestResult is one test case's final state for reporting.
type TestResult struct {
	Name        string
	Description string
	State       model.TestState
	Reason      string
	Duration    time.Duration
}

// AfterHookResult is one after-block action's outcome; after actions never
// change test state, but the report records whether they errored.
type AfterHookResult struct {
	Action model.Action
	Err    error
}

// ScenarioResult is one scenario's outcome: every test's final result, the
// after block's per-action outcomes, and the aggregated after-block error
// (never fatal to test state, only surfaced as a warning).
type ScenarioResult struct {
	Name     string
	Tests    []TestResult
	After    []AfterHookResult
	AfterErr error
}

// EventSink receives scheduler progress notifications. All methods are
// optional to implement meaningfully; a nil Sink on Scheduler is legal.
type EventSink interface {
	ScenarioStarted(name string)
	TestStarted(name string, async bool)
	TestPassed(name string)
	TestFailed(name, reason string)
	AfterBlockStarted(scenario string)
	StopOnFailure(scenario string)
	UnhandledAction(kind string)
}

// Scheduler owns the suite-wide backends and drives every scenario in turn.
// A fresh termbackend.Backend is created per scenario (spec design: scenario-
// scoped terminal keeps working-directory and shell-state changes isolated)
// and closed when the scenario ends.
type Scheduler struct {
	ShellPath string
	BaseDir   string
	Settings  model.TestSuiteSettings

	Filesystem dispatch.FilesystemBackend
	HTTP       dispatch.HTTPBackend
	System     interface {
		dispatch.SystemBackend
		CheckCondition(model.Condition) (bool, bool)
	}

	Store   *vars.Store
	Sink    EventSink
	Verbose bool

	// TickInterval overrides the inter-iteration sleep; zero uses 200ms.
	TickInterval time.Duration
}

func (s *Scheduler) tick() time.Duration {
	if s.TickInterval > 0 {
		return s.TickInterval
	}
	return defaultTickInterval
}

// Run drives every scenario in declared order. Once a scenario sets
// stop_on_failure's short-circuit, every later scenario's tests are recorded
// Skipped without being started.
func (s *Scheduler) Run(scenarios []*model.Scenario) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))
	stopped := false

	for _, sc := range scenarios {
		if stopped {
			results = append(results, skippedResult(sc))
			continue
		}

		res, stop, err := s.runScenario(sc)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if stop {
			stopped = true
		}
	}
	return results, nil
}

func skippedResult(sc *model.Scenario) ScenarioResult {
	tests := make([]TestResult, len(sc.Tests))
	for i, tc := range sc.Tests {
		tests[i] = TestResult{Name: tc.Name, State: model.StateSkipped}
	}
	return ScenarioResult{Name: sc.Name, Tests: tests}
}

// runtime is the scheduler's private bookkeeping for one test case; it is
// never exposed beyond the owning scenario run.
type runtime struct {
	state model.TestState
	start time.Time
	reason string
}

func (s *Scheduler) runScenario(scenario *model.Scenario) (ScenarioResult, bool, error) {
	s.emitScenarioStarted(scenario.Name)

	term, err := termbackend.New(s.ShellPath, s.BaseDir)
	if err != nil {
		return ScenarioResult{Name: scenario.Name}, false, fmt.Errorf("scenario %q: start terminal backend: %w", scenario.Name, err)
	}
	defer term.Close()

	d := &dispatch.Dispatcher{
		Terminal:    term,
		Filesystem:  s.Filesystem,
		HTTP:        s.HTTP,
		System:      s.System,
		Verbose:     s.Verbose,
		OnUnhandled: func(a model.Action) { s.emitUnhandled(string(a.Kind)) },
	}
	ev := &condition.Evaluator{
		Terminal:   term,
		Filesystem: s.Filesystem,
		HTTP:       s.HTTP,
		System:     s.System,
		Store:      s.Store,
	}

	rt := make(map[string]*runtime, len(scenario.Tests))
	for _, tc := range scenario.Tests {
		rt[tc.Name] = &runtime{state: model.StatePending}
	}
	testByName := make(map[string]*model.TestCase, len(scenario.Tests))
	for i := range scenario.Tests {
		testByName[scenario.Tests[i].Name] = &scenario.Tests[i]
	}
	snapshotStates := func() map[string]model.TestState {
		out := make(map[string]model.TestState, len(rt))
		for n, r := range rt {
			out[n] = r.state
		}
		return out
	}

	timeout := time.Duration(s.Settings.TimeoutSeconds) * time.Second
	scenarioStart := time.Now()
	stuck := false
	stopAll := false

pollLoop:
	for {
		stateChanged := false
		elapsedScenario := time.Since(scenarioStart).Seconds()

		var toStart, toPass []string
		var toFail []struct{ name, reason string }

		for _, tc := range scenario.Tests {
			r := rt[tc.Name]
			if r.state.IsTerminal() {
				continue
			}
			async := condition.IsAsynchronous(tc.Then)

			switch r.state {
			case model.StatePending:
				if async {
					term.DrainOutput()
				}
				snap := condition.Snapshot{TestStates: snapshotStates(), ElapsedSeconds: elapsedScenario}
				if ev.EvaluateAll(model.Conditions(tc.Given), snap) {
					toStart = append(toStart, tc.Name)
				}

			case model.StateRunning:
				if async {
					term.DrainOutput()
				}
				testElapsed := time.Since(r.start).Seconds()
				snap := condition.Snapshot{TestStates: snapshotStates(), ElapsedSeconds: testElapsed}
				if ev.EvaluateAll(tc.Then, snap) {
					toPass = append(toPass, tc.Name)
				} else if testElapsed > timeout.Seconds() {
					toFail = append(toFail, struct{ name, reason string }{
						tc.Name, fmt.Sprintf("Test timed out after %d seconds", s.Settings.TimeoutSeconds),
					})
				}
			}
		}

		if len(toStart) > 0 {
			stateChanged = true
			for _, name := range toStart {
				tc := testByName[name]
				r := rt[name]
				r.state = model.StateRunning
				r.start = time.Now()
				async := condition.IsAsynchronous(tc.Then)
				s.emitTestStarted(name, async)

				if s.startTest(tc, r, d, ev, term, timeout, async, snapshotStates) {
					stuck = true
				}
			}
		}

		if len(toPass) > 0 {
			stateChanged = true
			for _, name := range toPass {
				r := rt[name]
				if !r.state.IsTerminal() {
					r.state = model.StatePassed
					s.emitTestPassed(name)
				}
			}
		}

		if len(toFail) > 0 {
			stateChanged = true
			for _, f := range toFail {
				r := rt[f.name]
				if !r.state.IsTerminal() {
					r.state = model.StateFailed
					r.reason = f.reason
					s.emitTestFailed(f.name, f.reason)
				}
			}
		}

		allDone := true
		anyFailed := false
		for _, r := range rt {
			if !r.state.IsTerminal() {
				allDone = false
			}
			if r.state == model.StateFailed {
				anyFailed = true
			}
		}

		if s.Settings.StopOnFailure && anyFailed {
			for _, tc := range scenario.Tests {
				if rt[tc.Name].state == model.StatePending {
					rt[tc.Name].state = model.StateSkipped
				}
			}
			s.emitStopOnFailure(scenario.Name)
			stopAll = true
			break pollLoop
		}

		if allDone || !stateChanged || stuck {
			break pollLoop
		}

		time.Sleep(s.tick())
	}

	var afterErr error
	var after []AfterHookResult
	if len(scenario.After) > 0 {
		s.emitAfterBlockStarted(scenario.Name)
		var merr *multierror.Error
		for _, a := range scenario.After {
			err := d.Dispatch(a, s.Store, timeout)
			after = append(after, AfterHookResult{Action: a, Err: err})
			if err != nil {
				merr = multierror.Append(merr, err)
			}
		}
		afterErr = merr.ErrorOrNil()
	}

	tests := make([]TestResult, 0, len(scenario.Tests))
	for _, tc := range scenario.Tests {
		r := rt[tc.Name]
		var dur time.Duration
		if !r.start.IsZero() {
			dur = time.Since(r.start)
		}
		tests = append(tests, TestResult{
			Name: tc.Name, Description: tc.Description, State: r.state, Reason: r.reason, Duration: dur,
		})
	}

	return ScenarioResult{Name: scenario.Name, Tests: tests, After: after, AfterErr: afterErr}, stopAll, nil
}

// startTest runs a newly-Running test's given actions and when block. For a
// synchronous test it also clears the buffer, runs when, drains once, and
// evaluates then immediately — mutating r to a terminal state before
// returning. It reports true ("stuck") only when a synchronous Run timed out
// (exit 137), which ends the scenario's poll loop early but still lets the
// after block run, per the resolved after-hook semantics.
func (s *Scheduler) startTest(
	tc *model.TestCase,
	r *runtime,
	d *dispatch.Dispatcher,
	ev *condition.Evaluator,
	term *termbackend.Backend,
	timeout time.Duration,
	async bool,
	snapshotStates func() map[string]model.TestState,
) bool {
	for _, a := range model.Actions(tc.Given) {
		if err := d.Dispatch(a, s.Store, timeout); err != nil {
			r.state = model.StateFailed
			r.reason = err.Error()
			s.emitTestFailed(tc.Name, r.reason)
			return false
		}
		if !async {
			term.DrainOutput()
		}
	}

	if !async {
		term.ClearBuffer()
	}
	for _, a := range tc.When {
		if err := d.Dispatch(a, s.Store, timeout); err != nil {
			r.state = model.StateFailed
			r.reason = err.Error()
			s.emitTestFailed(tc.Name, r.reason)
			return false
		}
	}

	if async {
		return false
	}

	term.DrainOutput()

	if code, ok := term.LastExitCode(); ok && code == termbackend.TimeoutExitCode {
		r.state = model.StateFailed
		r.reason = "Command timed out"
		s.emitTestFailed(tc.Name, r.reason)
		return true
	}

	snap := condition.Snapshot{TestStates: snapshotStates(), ElapsedSeconds: time.Since(r.start).Seconds()}
	if ev.EvaluateAll(tc.Then, snap) {
		r.state = model.StatePassed
		s.emitTestPassed(tc.Name)
		return false
	}

	reason := "Synchronous test conditions not met"
	if stderr := term.LastStderr(); stderr != "" {
		reason = fmt.Sprintf("Synchronous test failed. Stderr: %s", strings.TrimSpace(stderr))
	}
	r.state = model.StateFailed
	r.reason = reason
	s.emitTestFailed(tc.Name, reason)
	return false
}

func (s *Scheduler) emitScenarioStarted(name string) {
	if s.Sink != nil {
		s.Sink.ScenarioStarted(name)
	}
}

func (s *Scheduler) emitTestStarted(name string, async bool) {
	if s.Sink != nil {
		s.Sink.TestStarted(name, async)
	}
}

func (s *Scheduler) emitTestPassed(name string) {
	if s.Sink != nil {
		s.Sink.TestPassed(name)
	}
}

func (s *Scheduler) emitTestFailed(name, reason string) {
	if s.Sink != nil {
		s.Sink.TestFailed(name, reason)
	}
}

func (s *Scheduler) emitAfterBlockStarted(name string) {
	if s.Sink != nil {
		s.Sink.AfterBlockStarted(name)
	}
}

func (s *Scheduler) emitStopOnFailure(name string) {
	if s.Sink != nil {
		s.Sink.StopOnFailure(name)
	}
}

func (s *Scheduler) emitUnhandled(kind string) {
	if s.Verbose && s.Sink != nil {
		s.Sink.UnhandledAction(kind)
	}
}
