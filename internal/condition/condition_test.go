package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

type stubBackend struct {
	kind    model.ConditionKind
	ok      bool
	handled bool
}

func (s *stubBackend) CheckCondition(cond model.Condition, _ *vars.Store) (bool, bool) {
	if cond.Kind != s.kind {
		return false, false
	}
	return s.ok, s.handled
}

type stubSystem struct{ ok, handled bool }

func (s *stubSystem) CheckCondition(model.Condition) (bool, bool) { return s.ok, s.handled }

func TestEvaluate_Time(t *testing.T) {
	e := &Evaluator{Store: vars.New()}
	assert.True(t, e.Evaluate(model.Condition{Kind: model.CondTime, Op: model.TimeGE, Seconds: 2}, Snapshot{ElapsedSeconds: 3}))
	assert.False(t, e.Evaluate(model.Condition{Kind: model.CondTime, Op: model.TimeLT, Seconds: 2}, Snapshot{ElapsedSeconds: 3}))
}

func TestEvaluate_StateSucceeded(t *testing.T) {
	e := &Evaluator{Store: vars.New()}
	snap := Snapshot{TestStates: map[string]model.TestState{"A": model.StatePassed, "B": model.StateFailed}}
	assert.True(t, e.Evaluate(model.Condition{Kind: model.CondStateSucceeded, TestName: "A"}, snap))
	assert.False(t, e.Evaluate(model.Condition{Kind: model.CondStateSucceeded, TestName: "B"}, snap))
}

func TestEvaluate_FallsThroughToFirstHandlingBackend(t *testing.T) {
	term := &stubBackend{kind: model.CondOutputContains, ok: true, handled: true}
	fs := &stubBackend{kind: model.CondFileExists, ok: true, handled: true}
	e := &Evaluator{Terminal: term, Filesystem: fs, Store: vars.New()}

	assert.True(t, e.Evaluate(model.Condition{Kind: model.CondFileExists}, Snapshot{}))
}

func TestEvaluate_NoBackendHandles_ReturnsFalse(t *testing.T) {
	e := &Evaluator{Store: vars.New()}
	assert.False(t, e.Evaluate(model.Condition{Kind: model.CondFileExists}, Snapshot{}))
}

func TestEvaluateAll_AllMustPass(t *testing.T) {
	sys := &stubSystem{ok: true, handled: true}
	e := &Evaluator{System: sys, Store: vars.New()}
	conds := []model.Condition{
		{Kind: model.CondServiceIsRunning, ServiceName: "x"},
		{Kind: model.CondServiceIsInstalled, ServiceName: "x"},
	}
	assert.True(t, e.EvaluateAll(conds, Snapshot{}))
}

func TestIsAsynchronous(t *testing.T) {
	assert.True(t, IsAsynchronous([]model.Condition{{Kind: model.CondOutputContains}}))
	assert.True(t, IsAsynchronous([]model.Condition{{Kind: model.CondLastCommandExitIs}, {Kind: model.CondStderrContains}}))
	assert.False(t, IsAsynchronous([]model.Condition{{Kind: model.CondLastCommandExitIs}, {Kind: model.CondStateSucceeded}}))
}
