package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

type stubBackend struct {
	kind    model.ActionKind
	calls   int
	wantErr error
}

func (s *stubBackend) ExecuteAction(action model.Action, _ *vars.Store) (bool, error) {
	if action.Kind != s.kind {
		return false, nil
	}
	s.calls++
	return true, s.wantErr
}

type stubTerminal struct{ stubBackend }

func (s *stubTerminal) ExecuteAction(action model.Action, store *vars.Store, _ time.Duration) (bool, error) {
	return s.stubBackend.ExecuteAction(action, store)
}

func TestDispatch_OffersInFixedOrder(t *testing.T) {
	term := &stubTerminal{stubBackend{kind: model.ActionRun}}
	fs := &stubBackend{kind: model.ActionCreateFile}
	http := &stubBackend{kind: model.ActionHttpGet}
	sys := &stubBackend{kind: model.ActionLog}

	d := &Dispatcher{Terminal: term, Filesystem: fs, HTTP: http, System: sys}
	store := vars.New()

	require.NoError(t, d.Dispatch(model.Action{Kind: model.ActionLog}, store, 0))
	assert.Equal(t, 1, sys.calls)
	assert.Equal(t, 0, fs.calls)
}

func TestDispatch_UnhandledActionCallsCallback(t *testing.T) {
	var unhandled model.Action
	d := &Dispatcher{OnUnhandled: func(a model.Action) { unhandled = a }}
	store := vars.New()
	err := d.Dispatch(model.Action{Kind: model.ActionLog, Message: "x"}, store, 0)
	assert.NoError(t, err)
	assert.Equal(t, model.ActionLog, unhandled.Kind)
}

func TestDispatch_PropagatesFatalError(t *testing.T) {
	fs := &stubBackend{kind: model.ActionCreateFile, wantErr: assert.AnError}
	d := &Dispatcher{Filesystem: fs}
	store := vars.New()
	err := d.Dispatch(model.Action{Kind: model.ActionCreateFile}, store, 0)
	assert.ErrorIs(t, err, assert.AnError)
}
