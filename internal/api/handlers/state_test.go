package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := GenerateState(map[string]string{"from": "signin"})
	require.NoError(t, err)

	data, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, "signin", data["from"])
}

func TestGenerateState_Unique(t *testing.T) {
	a, err := GenerateState(nil)
	require.NoError(t, err)
	b, err := GenerateState(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecodeState_Invalid(t *testing.T) {
	for _, state := range []string{"", "no-separator", "a.b.c", "nonce.!!!not-base64!!!"} {
		_, err := DecodeState(state)
		assert.Error(t, err, "state %q", state)
	}
}
