package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute_KnownAndUnknownNames(t *testing.T) {
	s := New()
	s.Set("NAME", "world")

	assert.Equal(t, "hello world", s.Substitute("hello ${NAME}"))
	assert.Equal(t, "hello ${OTHER}", s.Substitute("hello ${OTHER}"))
}

func TestSubstitute_Idempotent_NoPlaceholders(t *testing.T) {
	s := New()
	s.Set("X", "1")
	const plain = "nothing to replace here"
	assert.Equal(t, plain, s.Substitute(plain))
}

func TestSubstitute_MultipleOccurrences(t *testing.T) {
	s := New()
	s.Set("A", "1")
	s.Set("B", "2")
	assert.Equal(t, "1-2-1", s.Substitute("${A}-${B}-${A}"))
}

func TestSubstitute_Shallow_NoNestedExpansion(t *testing.T) {
	s := New()
	s.Set("OUTER", "${INNER}")
	s.Set("INNER", "leaf")
	// OUTER's value is substituted literally; the ${INNER} inside it is
	// not re-scanned in the same pass.
	assert.Equal(t, "${INNER}", s.Substitute("${OUTER}"))
}

func TestSubstitute_UnterminatedPlaceholder(t *testing.T) {
	s := New()
	s.Set("X", "1")
	assert.Equal(t, "value ${X", s.Substitute("value ${X"))
}

func TestSeedAndSnapshot(t *testing.T) {
	s := New()
	s.Seed(map[string]string{"a": "1", "b": "2"})
	s.Set("c", "3")

	snap := s.Snapshot()
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, snap)

	// Snapshot is a copy.
	snap["a"] = "mutated"
	v, _ := s.Get("a")
	assert.Equal(t, "1", v)
}

func TestGet_MissingName(t *testing.T) {
	s := New()
	_, ok := s.Get("missing")
	assert.False(t, ok)
}
