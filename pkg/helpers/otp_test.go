package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	code, hash, err := GenerateOTP()
	require.NoError(t, err)

	assert.Len(t, code, 7)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
	}
	assert.Equal(t, HashOTP(code), hash)
	assert.Len(t, hash, 64)
}

func TestGenerateOTPVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, _, err := GenerateOTP()
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should not repeat across calls")
}

func TestHashOTPDeterministic(t *testing.T) {
	assert.Equal(t, HashOTP("1234567"), HashOTP("1234567"))
	assert.NotEqual(t, HashOTP("1234567"), HashOTP("1234568"))
}

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Equal(t, HashResetToken(token), hash)

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
