package report

import (
	"fmt"

	"github.com/cladam/choreo/internal/model"
)

// FormatAction renders an Action as a human-readable label for the report's
// after-hook rows, e.g. "User runs 'rm -rf tmp'" or "FileSystem delete_file
// 'a.txt'". One line per Kind, carried forward from the source's
// per-variant match rather than a generic dump of the struct.
func FormatAction(a model.Action) string {
	switch a.Kind {
	case model.ActionType:
		return fmt.Sprintf("%s types %q", a.Actor, a.Content)
	case model.ActionPress:
		return fmt.Sprintf("%s presses %q", a.Actor, a.Key)
	case model.ActionRun:
		return fmt.Sprintf("%s runs '%s'", a.Actor, a.Command)

	case model.ActionPause:
		return fmt.Sprintf("duration of '%d'", a.Seconds)
	case model.ActionLog:
		return fmt.Sprintf("logs '%s'", a.Message)
	case model.ActionTimestamp:
		return fmt.Sprintf("timestamp at (%s)", a.Variable)
	case model.ActionUuid:
		return fmt.Sprintf("uuid of '%s'", a.Variable)

	case model.ActionCreateFile:
		return fmt.Sprintf("FileSystem create_file '%s'", a.Path)
	case model.ActionDeleteFile:
		return fmt.Sprintf("FileSystem delete_file '%s'", a.Path)
	case model.ActionCreateDir:
		return fmt.Sprintf("FileSystem create_dir '%s'", a.Path)
	case model.ActionDeleteDir:
		return fmt.Sprintf("FileSystem delete_dir '%s'", a.Path)
	case model.ActionReadFile:
		return fmt.Sprintf("FileSystem read_file '%s' with variable: %q", a.Path, a.Variable)

	case model.ActionHttpGet:
		return fmt.Sprintf("HTTP GET '%s'", a.URL)
	case model.ActionHttpPost:
		return fmt.Sprintf("HTTP POST '%s'", a.URL)
	case model.ActionHttpPut:
		return fmt.Sprintf("HTTP PUT '%s'", a.URL)
	case model.ActionHttpPatch:
		return fmt.Sprintf("HTTP PATCH '%s'", a.URL)
	case model.ActionHttpDelete:
		return fmt.Sprintf("HTTP DELETE '%s'", a.URL)
	case model.ActionHttpSetHeader:
		return fmt.Sprintf("HTTP set_header '%s: %s'", a.Header, a.Value)
	case model.ActionHttpClearHeader:
		return fmt.Sprintf("HTTP clear_header '%s'", a.Header)
	case model.ActionHttpClearHdrs:
		return "HTTP clear_headers"
	case model.ActionHttpSetCookie:
		return fmt.Sprintf("HTTP set_cookie '%s: %s'", a.Cookie, a.Value)
	case model.ActionHttpClearCookie:
		return fmt.Sprintf("HTTP clear_cookie '%s'", a.Cookie)
	case model.ActionHttpClearCkies:
		return "HTTP clear_cookies"
	}
	return string(a.Kind)
}
