// Package sysbackend implements the system backend: logging, pausing,
// timestamp/UUID generation, and service/port probes, accumulating a
// text "last output" buffer. No condition reads that buffer.
package sysbackend

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/google/uuid"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

// Backend accumulates a text output buffer for System actor actions.
type Backend struct {
	LastOutput strings.Builder
	Verbose    bool
}

// New returns an empty Backend.
func New(verbose bool) *Backend {
	return &Backend{Verbose: verbose}
}

func (b *Backend) appendLine(line string) {
	if b.LastOutput.Len() > 0 && !strings.HasSuffix(b.LastOutput.String(), "\n") {
		b.LastOutput.WriteByte('\n')
	}
	b.LastOutput.WriteString(line)
	b.LastOutput.WriteByte('\n')
}

// ClearOutput clears the accumulated last-output buffer.
func (b *Backend) ClearOutput() {
	b.LastOutput.Reset()
}

// ExecuteAction executes a System action if this backend handles its Kind.
func (b *Backend) ExecuteAction(action model.Action, store *vars.Store) (handled bool, err error) {
	switch action.Kind {
	case model.ActionLog:
		message := store.Substitute(action.Message)
		b.appendLine(fmt.Sprintf("System: %s", message))
		return true, nil

	case model.ActionPause:
		time.Sleep(time.Duration(action.Seconds) * time.Second)
		return true, nil

	case model.ActionTimestamp:
		ts := time.Now().UTC().Format("2006-01-02_15:04:05")
		store.Set(action.Variable, ts)
		b.appendLine(fmt.Sprintf("Timestamp %s = %s", action.Variable, ts))
		return true, nil

	case model.ActionUuid:
		id := uuid.NewString()
		store.Set(action.Variable, id)
		b.appendLine(fmt.Sprintf("Uuid %s = %s", action.Variable, id))
		return true, nil
	}
	return false, nil
}

// CheckCondition evaluates a system-probe condition. These checks are
// best effort and platform dependent; failures to query resolve to false
// rather than propagating an error.
func (b *Backend) CheckCondition(cond model.Condition) (bool, bool) {
	switch cond.Kind {
	case model.CondServiceIsRunning:
		return b.serviceIsRunning(cond.ServiceName), true
	case model.CondServiceIsStopped:
		return !b.serviceIsRunning(cond.ServiceName), true
	case model.CondServiceIsInstalled:
		return b.serviceIsInstalled(cond.ServiceName), true
	case model.CondPortIsListening:
		return b.portIsListening(cond.Port), true
	case model.CondPortIsClosed:
		return !b.portIsListening(cond.Port), true
	}
	return false, false
}

// serviceIsRunning queries systemd over dbus first; if the connection or
// the unit cannot be queried, it falls back to shelling out to
// `systemctl is-active`, matching the source's systemctl-then-service
// fallback chain.
func (b *Backend) serviceIsRunning(name string) bool {
	if conn, err := dbus.NewSystemConnectionContext(context.Background()); err == nil {
		defer conn.Close()
		unit := name
		if !strings.HasSuffix(unit, ".service") {
			unit += ".service"
		}
		if props, err := conn.GetUnitPropertiesContext(context.Background(), unit); err == nil {
			if state, ok := props["ActiveState"].(string); ok {
				return state == "active"
			}
		}
	}

	out, err := exec.Command("systemctl", "is-active", name).Output() //nolint:gosec // operator-supplied service name
	if err == nil && strings.TrimSpace(string(out)) == "active" {
		return true
	}

	cmd := exec.Command("service", name, "status") //nolint:gosec // operator-supplied service name
	return cmd.Run() == nil
}

// serviceIsInstalled checks for systemd unit files and init.d scripts.
func (b *Backend) serviceIsInstalled(name string) bool {
	paths := []string{
		"/etc/systemd/system/" + name + ".service",
		"/lib/systemd/system/" + name + ".service",
		"/usr/lib/systemd/system/" + name + ".service",
		"/etc/init.d/" + name,
	}
	for _, p := range paths {
		if pathExists(p) {
			return true
		}
	}
	return false
}

// portIsListening attempts to bind the port; AddrInUse means something is
// already listening. Other bind failures fall back to an external probe.
func (b *Backend) portIsListening(port int) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		_ = ln.Close()
		return false
	}
	if strings.Contains(err.Error(), "address already in use") {
		return true
	}
	return b.portWithSystemCommand(port)
}

func (b *Backend) portWithSystemCommand(port int) bool {
	out, err := exec.Command("ss", "-tlnp", fmt.Sprintf("sport = :%d", port)).Output()
	if err != nil {
		return false
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	return len(lines) > 1
}
