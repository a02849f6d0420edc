package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("hello"), HashString("hello"))
	assert.NotEqual(t, HashString("hello"), HashString("world"))
	assert.Len(t, HashString("hello"), 32)
}

func TestNewPublicToken(t *testing.T) {
	a, err := NewPublicToken()
	require.NoError(t, err)
	b, err := NewPublicToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "=")
}
