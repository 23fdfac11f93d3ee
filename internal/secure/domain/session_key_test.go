package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionKey(t *testing.T) {
	t.Run("generates key of correct size", func(t *testing.T) {
		key, err := NewSessionKey()
		require.NoError(t, err)
		assert.Len(t, []byte(key), SessionKeySize)
	})

	t.Run("consecutive keys are unique", func(t *testing.T) {
		key1, err := NewSessionKey()
		require.NoError(t, err)
		key2, err := NewSessionKey()
		require.NoError(t, err)
		assert.NotEqual(t, key1, key2)
	})
}

func TestSessionKey_Hex(t *testing.T) {
	key, err := NewSessionKey()
	require.NoError(t, err)

	encoded := key.Hex()
	assert.Len(t, encoded, SessionKeySize*2)
	assert.Equal(t, strings.ToLower(encoded), encoded)
}

func TestSessionKeyFromHex(t *testing.T) {
	t.Run("round-trips through hex", func(t *testing.T) {
		key, err := NewSessionKey()
		require.NoError(t, err)

		decoded, err := SessionKeyFromHex(key.Hex())
		require.NoError(t, err)
		assert.Equal(t, key, decoded)
	})

	t.Run("rejects non-hex input", func(t *testing.T) {
		_, err := SessionKeyFromHex("not hex at all!")
		assert.ErrorIs(t, err, ErrInvalidWrappedKey)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := SessionKeyFromHex("deadbeef")
		assert.ErrorIs(t, err, ErrInvalidWrappedKey)
	})
}
