// Package vars implements the suite-wide variable store and the shallow
// ${NAME} substitution used by actions and conditions before evaluation.
package vars

import "strings"

// Store is a process-wide mapping of name to string value. All access is
// expected from a single goroutine (the scheduler), so no locking is
// provided — mirroring the single-writer guarantee the scheduler already
// holds over test state.
type Store struct {
	values map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Seed copies every entry of the given map into the store, overwriting
// any existing entries with the same name.
func (s *Store) Seed(initial map[string]string) {
	for k, v := range initial {
		s.values[k] = v
	}
}

// Set writes a single variable.
func (s *Store) Set(name, value string) {
	s.values[name] = value
}

// Get returns the current value for name and whether it is set.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Snapshot returns a copy of the current variable mapping.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Substitute replaces every literal ${NAME} occurrence in text with the
// store's current value for NAME. Unknown names are left untouched.
// Substitution is shallow: it performs exactly one scan-and-replace pass
// and never re-scans a value that was just substituted in.
func (s *Store) Substitute(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "${")
		if start < 0 {
			b.WriteString(text[i:])
			break
		}
		start += i
		b.WriteString(text[i:start])

		end := strings.IndexByte(text[start+2:], '}')
		if end < 0 {
			b.WriteString(text[start:])
			break
		}
		end += start + 2

		name := text[start+2 : end]
		if value, ok := s.values[name]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(text[start : end+1])
		}
		i = end + 1
	}
	return b.String()
}
