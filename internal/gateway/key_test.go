package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPublicKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{name: "Clean live key", key: "p_live_abcdef123456", expected: true},
		{name: "Test key", key: "p_test_abcdef123456", expected: true},
		{name: "Test key with embedded marker", key: "p_test_c18_material99", expected: true},
		{name: "Empty", key: "", expected: false},
		{name: "Too short", key: "p_short", expected: false},
		{name: "Secret key", key: "s_live_abc1234567", expected: false},
		{name: "No prefix", key: "live_abcdef123456", expected: false},
		{name: "Embedded c18", key: "p_live_c18_abcdef1234", expected: false},
		{name: "Embedded secret segment", key: "p_live_s_abc12345678", expected: false},
		{name: "Concatenated secret", key: "p_live_ok_s_leak12345", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidPublicKey(tt.key))
		})
	}
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, IsSecretKey("s_live_abc1234567"))
	assert.False(t, IsSecretKey("p_live_abcdef123456"))
	assert.False(t, IsSecretKey("s_short"))
}

func TestValidatePublicKey(t *testing.T) {
	assert.NoError(t, ValidatePublicKey("p_test_abcdef123456", "tokenization"))

	tests := []struct {
		name     string
		key      string
		contains string
	}{
		{name: "Secret key", key: "s_live_abc1234567", contains: "secret key instead of public key"},
		{name: "Embedded secret", key: "p_live_c18_abcdef1234", contains: "embedded secret key data"},
		{name: "Wrong format", key: "pk_abcdef123456", contains: `must start with "p_"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePublicKey(tt.key, "tokenization")
			require.Error(t, err)
			assert.Equal(t, KindConfiguration, KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.Contains(t, err.Error(), "tokenization")
		})
	}
}
