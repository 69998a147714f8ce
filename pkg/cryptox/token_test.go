package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates URL-safe tokens", func(t *testing.T) {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 43) // 32 bytes base64url, no padding
		require.NotContains(t, token, "=")
		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			token, err := GenerateToken(TokenSize128)
			require.NoError(t, err)
			require.False(t, seen[token], "token collision")
			seen[token] = true
		}
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("reset-token"), FingerprintToken("reset-token"))
	})

	t.Run("distinct inputs give distinct fingerprints", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("token-a"), FingerprintToken("token-b"))
	})

	t.Run("fingerprint does not leak the token", func(t *testing.T) {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, FingerprintToken(token), token)
	})
}
