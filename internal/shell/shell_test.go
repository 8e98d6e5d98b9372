package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FindsShOnPath(t *testing.T) {
	path, err := Resolve("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestResolve_RejectsEmptyName(t *testing.T) {
	_, err := Resolve("")
	assert.Error(t, err)
}

func TestDefault_NeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Default())
}
