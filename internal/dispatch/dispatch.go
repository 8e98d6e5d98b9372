// Package dispatch routes a parsed Action to the first backend that
// accepts it: terminal, filesystem, HTTP, then system, in that fixed
// order. Backends are modeled as concrete values with their own action
// surface rather than behind one universal "Backend" interface, since
// the action surface of each differs (spec.md §9 design note).
package dispatch

import (
	"time"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

// TerminalBackend is the subset of termbackend.Backend the dispatcher needs.
type TerminalBackend interface {
	ExecuteAction(action model.Action, store *vars.Store, timeout time.Duration) (handled bool, err error)
}

// FilesystemBackend is the subset of fsbackend.Backend the dispatcher needs.
type FilesystemBackend interface {
	ExecuteAction(action model.Action, store *vars.Store) (handled bool, err error)
}

// HTTPBackend is the subset of httpbackend.Backend the dispatcher needs.
type HTTPBackend interface {
	ExecuteAction(action model.Action, store *vars.Store) (handled bool, err error)
}

// SystemBackend is the subset of sysbackend.Backend the dispatcher needs.
type SystemBackend interface {
	ExecuteAction(action model.Action, store *vars.Store) (handled bool, err error)
}

// Dispatcher offers an Action to each backend in turn until one handles it.
type Dispatcher struct {
	Terminal   TerminalBackend
	Filesystem FilesystemBackend
	HTTP       HTTPBackend
	System     SystemBackend
	// Verbose is not read by Dispatch: OnUnhandled is called for every
	// unhandled action, and the callback decides whether to log it.
	Verbose bool
	OnUnhandled func(action model.Action)
}

// Dispatch executes action against the first backend that accepts it.
// Dispatch is synchronous; Pause and Run actions block the caller.
func (d *Dispatcher) Dispatch(action model.Action, store *vars.Store, timeout time.Duration) error {
	if d.Terminal != nil {
		if handled, err := d.Terminal.ExecuteAction(action, store, timeout); handled {
			return err
		}
	}
	if d.Filesystem != nil {
		if handled, err := d.Filesystem.ExecuteAction(action, store); handled {
			return err
		}
	}
	if d.HTTP != nil {
		if handled, err := d.HTTP.ExecuteAction(action, store); handled {
			return err
		}
	}
	if d.System != nil {
		if handled, err := d.System.ExecuteAction(action, store); handled {
			return err
		}
	}
	if d.OnUnhandled != nil {
		d.OnUnhandled(action)
	}
	return nil
}
