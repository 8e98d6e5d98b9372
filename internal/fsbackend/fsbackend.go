// Package fsbackend implements the filesystem backend: creating and
// deleting files/directories under a base directory, and evaluating
// file/directory predicates against it.
package fsbackend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

// Backend is constructed with a base directory; every path is resolved
// by joining against it. No traversal protection is performed, matching
// the source behavior.
type Backend struct {
	fs      afero.Fs
	baseDir string
}

// New returns a Backend rooted at baseDir backed by the real OS filesystem.
func New(baseDir string) *Backend {
	return &Backend{fs: afero.NewOsFs(), baseDir: baseDir}
}

// NewWithFs returns a Backend over an arbitrary afero.Fs, for testing
// against an in-memory filesystem.
func NewWithFs(fs afero.Fs, baseDir string) *Backend {
	return &Backend{fs: fs, baseDir: baseDir}
}

func (b *Backend) resolve(path string) string {
	return filepath.Join(b.baseDir, path)
}

// ExecuteAction executes a filesystem action if this backend handles its
// Kind. The returned bool reports whether the action was handled; err is
// non-nil only for handled actions, and any I/O error is fatal for the
// enclosing test per the source's contract.
func (b *Backend) ExecuteAction(action model.Action, store *vars.Store) (handled bool, err error) {
	switch action.Kind {
	case model.ActionCreateFile:
		path := b.resolve(store.Substitute(action.Path))
		content := store.Substitute(action.Content)
		if err := b.fs.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return true, fmt.Errorf("create_file: %w", err)
		}
		if err := afero.WriteFile(b.fs, path, []byte(content), 0644); err != nil {
			return true, fmt.Errorf("create_file: %w", err)
		}
		return true, nil

	case model.ActionDeleteFile:
		path := b.resolve(store.Substitute(action.Path))
		exists, err := afero.Exists(b.fs, path)
		if err != nil {
			return true, fmt.Errorf("delete_file: %w", err)
		}
		if !exists {
			return true, nil
		}
		if err := b.fs.Remove(path); err != nil {
			return true, fmt.Errorf("delete_file: %w", err)
		}
		return true, nil

	case model.ActionCreateDir:
		path := b.resolve(store.Substitute(action.Path))
		if err := b.fs.MkdirAll(path, 0750); err != nil {
			return true, fmt.Errorf("create_dir: %w", err)
		}
		return true, nil

	case model.ActionDeleteDir:
		path := b.resolve(store.Substitute(action.Path))
		exists, err := afero.DirExists(b.fs, path)
		if err != nil {
			return true, fmt.Errorf("delete_dir: %w", err)
		}
		if !exists {
			return true, nil
		}
		if err := b.fs.RemoveAll(path); err != nil {
			return true, fmt.Errorf("delete_dir: %w", err)
		}
		return true, nil

	case model.ActionReadFile:
		path := b.resolve(store.Substitute(action.Path))
		data, err := afero.ReadFile(b.fs, path)
		if err != nil {
			return true, fmt.Errorf("read_file: %w", err)
		}
		store.Set(action.Variable, string(data))
		return true, nil
	}
	return false, nil
}

// CheckCondition evaluates a filesystem condition against this backend.
// I/O errors never propagate; they are reported as false, matching the
// source's check_condition contract.
func (b *Backend) CheckCondition(cond model.Condition, store *vars.Store) (bool, bool) {
	switch cond.Kind {
	case model.CondFileExists:
		path := b.resolve(store.Substitute(cond.Path))
		exists, err := afero.Exists(b.fs, path)
		return err == nil && exists, true

	case model.CondFileDoesNotExist:
		path := b.resolve(store.Substitute(cond.Path))
		exists, err := afero.Exists(b.fs, path)
		return err == nil && !exists, true

	case model.CondDirExists:
		path := b.resolve(store.Substitute(cond.Path))
		isDir, err := afero.DirExists(b.fs, path)
		return err == nil && isDir, true

	case model.CondFileContains:
		path := b.resolve(store.Substitute(cond.Path))
		data, err := afero.ReadFile(b.fs, path)
		if err != nil {
			return false, true
		}
		return strings.Contains(string(data), store.Substitute(cond.Content)), true
	}
	return false, false
}
