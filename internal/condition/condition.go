// Package condition implements the condition evaluator: given a parsed
// Condition and the current engine snapshot, it returns a boolean,
// possibly side-effecting the variable store on regex capture. Condition
// evaluation never throws; an invalid regex or an absent response simply
// evaluates to false; a test may eventually time out instead.
package condition

import (
	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

// Backend is the minimal CheckCondition surface each stateful backend
// exposes to the evaluator.
type Backend interface {
	CheckCondition(cond model.Condition, store *vars.Store) (ok bool, handled bool)
}

// terminalBackend additionally needs the store for substitution, same
// signature as Backend — kept as a distinct name purely for readability
// at call sites in Evaluator.
type terminalBackend = Backend

// systemBackend differs: the source system backend's checks take no
// variable store (service/port probes have no substitutable fields).
type systemBackend interface {
	CheckCondition(cond model.Condition) (ok bool, handled bool)
}

// Snapshot is the read-mostly engine view passed to evaluation: test
// states, and the elapsed clock appropriate to the condition's position
// (scenario-elapsed for `given`, test-elapsed for `then` — the caller
// picks which clock to pass in).
type Snapshot struct {
	TestStates     map[string]model.TestState
	ElapsedSeconds float64
}

// Evaluator composes the stateful backends and the variable store to
// evaluate any Condition variant.
type Evaluator struct {
	Terminal   terminalBackend
	Filesystem Backend
	HTTP       Backend
	System     systemBackend
	Store      *vars.Store
}

// Evaluate returns the condition's truth value against snapshot,
// consulting backends in the same fixed order the dispatcher uses for
// actions: terminal, filesystem, HTTP, system.
func (e *Evaluator) Evaluate(cond model.Condition, snapshot Snapshot) bool {
	switch cond.Kind {
	case model.CondTime:
		return compareTime(snapshot.ElapsedSeconds, cond.Op, cond.Seconds)

	case model.CondStateSucceeded:
		return snapshot.TestStates[cond.TestName] == model.StatePassed
	}

	if e.Terminal != nil {
		if ok, handled := e.Terminal.CheckCondition(cond, e.Store); handled {
			return ok
		}
	}
	if e.Filesystem != nil {
		if ok, handled := e.Filesystem.CheckCondition(cond, e.Store); handled {
			return ok
		}
	}
	if e.HTTP != nil {
		if ok, handled := e.HTTP.CheckCondition(cond, e.Store); handled {
			return ok
		}
	}
	if e.System != nil {
		if ok, handled := e.System.CheckCondition(cond); handled {
			return ok
		}
	}
	return false
}

// EvaluateAll returns true only if every condition evaluates true.
func (e *Evaluator) EvaluateAll(conds []model.Condition, snapshot Snapshot) bool {
	for _, c := range conds {
		if !e.Evaluate(c, snapshot) {
			return false
		}
	}
	return true
}

func compareTime(elapsed float64, op model.TimeOp, threshold float64) bool {
	switch op {
	case model.TimeLT:
		return elapsed < threshold
	case model.TimeLE:
		return elapsed <= threshold
	case model.TimeEQ:
		return elapsed == threshold
	case model.TimeGT:
		return elapsed > threshold
	case model.TimeGE:
		return elapsed >= threshold
	}
	return false
}

// IsAsynchronous reports whether any condition in then depends on
// streaming PTY output, which forces asynchronous scheduling for the
// owning test (spec.md §4.8, Open Question 1: mixing exit-code and
// text-matching conditions still counts as asynchronous).
func IsAsynchronous(then []model.Condition) bool {
	for _, c := range then {
		switch c.Kind {
		case model.CondOutputContains, model.CondOutputMatches, model.CondStderrContains:
			return true
		}
	}
	return false
}
