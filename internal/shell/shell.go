// Package shell resolves the shell executable used to host a scenario's
// terminal session when a suite does not pin settings.shell_path.
package shell

import (
	"fmt"
	"os"
	"os/exec"
)

// commonPaths are checked when exec.LookPath can't resolve name from PATH,
// mirroring the teacher's platform.Resolve fallback.
var commonPaths = []string{
	"/bin/",
	"/usr/bin/",
	"/usr/local/bin/",
}

// Default returns the shell to use when a suite leaves shell_path unset:
// $SHELL if that path exists, else the first of sh/bash
// found on PATH or in a common install location.
func Default() string {
	if fromEnv := os.Getenv("SHELL"); fromEnv != "" {
		if _, err := os.Stat(fromEnv); err == nil {
			return fromEnv
		}
	}

	for _, name := range []string{"sh", "bash"} {
		if path, err := Resolve(name); err == nil {
			return path
		}
	}
	return "/bin/sh"
}

// Resolve locates the real binary for name via PATH, falling back to a
// short list of common Unix install directories.
func Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("shell name must be non-empty")
	}

	if resolved, err := exec.LookPath(name); err == nil {
		return resolved, nil
	}

	for _, dir := range commonPaths {
		candidate := dir + name
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("shell not found: %s", name)
}
