package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tg := NewTokenGenerator()

	token, tokenHash, err := tg.GenerateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, TokenPrefix))
	assert.Len(t, tokenHash, 64) // sha256 hex
	assert.NoError(t, tg.ValidateTokenFormat(token))
	assert.Equal(t, tokenHash, tg.HashToken(token))
}

func TestGenerateTokenUnique(t *testing.T) {
	tg := NewTokenGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := tg.GenerateToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestValidateTokenFormat(t *testing.T) {
	tg := NewTokenGenerator()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{
			name:    "valid token",
			token:   "studio_dGVzdHRva2VuZGF0YXRlc3R0b2tlbmRhdGE",
			wantErr: false,
		},
		{
			name:    "missing prefix",
			token:   "dGVzdHRva2VuZGF0YQ",
			wantErr: true,
		},
		{
			name:    "wrong prefix",
			token:   "other_dGVzdHRva2VuZGF0YQ",
			wantErr: true,
		},
		{
			name:    "prefix only",
			token:   "studio_",
			wantErr: true,
		},
		{
			name:    "invalid base64",
			token:   "studio_!!!not-base64!!!",
			wantErr: true,
		},
		{
			name:    "empty string",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tg.ValidateTokenFormat(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	tg := NewTokenGenerator()

	assert.Equal(t, tg.HashToken("studio_abc"), tg.HashToken("studio_abc"))
	assert.NotEqual(t, tg.HashToken("studio_abc"), tg.HashToken("studio_abd"))
}
