package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "backoffice-test-pepper")
	SetPepperPath(pepperPath)

	// Clean up pepper file before and after tests
	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			// Verify PHC format
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")
		})
	}
}

func TestHashPasswordSalted(t *testing.T) {
	// Two hashes of the same password must differ (random salt).
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	t.Run("accepts correct password", func(t *testing.T) {
		require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		require.Error(t, VerifyPassword("incorrect horse", hash))
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		require.Error(t, VerifyPassword("anything", "not-a-phc-hash"))
	})

	t.Run("rejects truncated hash", func(t *testing.T) {
		require.Error(t, VerifyPassword("anything", hash[:len(hash)/2]))
	})
}
