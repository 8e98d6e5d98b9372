package model

import (
	"errors"
	"fmt"
)

// ActionKind discriminates the Action tagged union. Go has no sum types,
// so each variant's fields live on the same struct, gated by Kind — the
// same shape the teacher uses for Match/Response variants, generalized
// to a single discriminant field here since the variant count is larger.
type ActionKind string

const (
	ActionType            ActionKind = "type"
	ActionPress           ActionKind = "press"
	ActionRun             ActionKind = "run"
	ActionCreateFile      ActionKind = "create_file"
	ActionDeleteFile      ActionKind = "delete_file"
	ActionCreateDir       ActionKind = "create_dir"
	ActionDeleteDir       ActionKind = "delete_dir"
	ActionReadFile        ActionKind = "read_file"
	ActionLog             ActionKind = "log"
	ActionPause           ActionKind = "pause"
	ActionTimestamp       ActionKind = "timestamp"
	ActionUuid            ActionKind = "uuid"
	ActionHttpGet         ActionKind = "http_get"
	ActionHttpPost        ActionKind = "http_post"
	ActionHttpPut         ActionKind = "http_put"
	ActionHttpPatch       ActionKind = "http_patch"
	ActionHttpDelete      ActionKind = "http_delete"
	ActionHttpSetHeader   ActionKind = "http_set_header"
	ActionHttpClearHeader ActionKind = "http_clear_header"
	ActionHttpClearHdrs   ActionKind = "http_clear_headers"
	ActionHttpSetCookie   ActionKind = "http_set_cookie"
	ActionHttpClearCookie ActionKind = "http_clear_cookie"
	ActionHttpClearCkies  ActionKind = "http_clear_cookies"
)

// Action is a single instruction routed through the dispatcher to
// whichever backend claims it.
type Action struct {
	Kind ActionKind `yaml:"kind"`

	Actor   string `yaml:"actor,omitempty"`
	Content string `yaml:"content,omitempty"` // Type
	Key     string `yaml:"key,omitempty"`     // Press
	Command string `yaml:"command,omitempty"` // Run

	Path     string `yaml:"path,omitempty"`     // CreateFile/ReadFile/filesystem
	Variable string `yaml:"variable,omitempty"` // ReadFile/Timestamp/Uuid

	Message string `yaml:"message,omitempty"` // Log
	Seconds int     `yaml:"seconds,omitempty"` // Pause

	URL    string            `yaml:"url,omitempty"`
	Body   string            `yaml:"body,omitempty"`
	Header string            `yaml:"header,omitempty"`
	Value  string            `yaml:"value,omitempty"`
	Cookie string            `yaml:"cookie,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Validate checks the fields required by this action's Kind are present.
func (a *Action) Validate() error {
	switch a.Kind {
	case ActionType:
		if a.Content == "" {
			return errors.New("type: content must be non-empty")
		}
	case ActionPress:
		if a.Key == "" {
			return errors.New("press: key must be non-empty")
		}
	case ActionRun:
		if a.Command == "" {
			return errors.New("run: command must be non-empty")
		}
	case ActionCreateFile:
		if a.Path == "" {
			return errors.New("create_file: path must be non-empty")
		}
	case ActionDeleteFile, ActionDeleteDir, ActionCreateDir:
		if a.Path == "" {
			return fmt.Errorf("%s: path must be non-empty", a.Kind)
		}
	case ActionReadFile:
		if a.Path == "" || a.Variable == "" {
			return errors.New("read_file: path and variable must be non-empty")
		}
	case ActionLog:
		if a.Message == "" {
			return errors.New("log: message must be non-empty")
		}
	case ActionTimestamp, ActionUuid:
		if a.Variable == "" {
			return fmt.Errorf("%s: variable must be non-empty", a.Kind)
		}
	case ActionHttpGet, ActionHttpPost, ActionHttpPut, ActionHttpPatch, ActionHttpDelete:
		if a.URL == "" {
			return fmt.Errorf("%s: url must be non-empty", a.Kind)
		}
	case ActionHttpSetHeader, ActionHttpSetCookie:
		if a.Header == "" && a.Cookie == "" {
			return fmt.Errorf("%s: header/cookie name must be non-empty", a.Kind)
		}
	case "":
		return errors.New("kind must be set")
	}
	return nil
}
