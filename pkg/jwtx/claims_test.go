package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSessionClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	claims := NewSessionClaims(7, "backoffice", time.Hour, now)

	require.Equal(t, "7", claims.Subject)
	require.Equal(t, "backoffice", claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestClaimsUserID(t *testing.T) {
	t.Parallel()

	t.Run("recovers the bound id", func(t *testing.T) {
		claims := NewSessionClaims(123456, "backoffice", time.Hour, time.Now().UTC())
		id, err := claims.UserID()
		require.NoError(t, err)
		require.Equal(t, int64(123456), id)
	})

	t.Run("rejects a non-numeric subject", func(t *testing.T) {
		claims := Claims{}
		claims.Subject = "alice"
		_, err := claims.UserID()
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateIssuer(t *testing.T) {
	t.Parallel()

	claims := NewSessionClaims(1, "backoffice", time.Hour, time.Now().UTC())

	require.NoError(t, claims.ValidateIssuer("backoffice"))
	require.NoError(t, claims.ValidateIssuer("")) // nothing to enforce
	require.ErrorIs(t, claims.ValidateIssuer("someone-else"), ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	t.Run("accepts a live token", func(t *testing.T) {
		claims := NewSessionClaims(1, "backoffice", time.Hour, time.Now().UTC())
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		claims := NewSessionClaims(1, "backoffice", time.Minute, time.Now().UTC().Add(-time.Hour))
		require.ErrorIs(t, claims.ValidateExpiry(), ErrExpired)
	})

	t.Run("rejects a token from the future", func(t *testing.T) {
		claims := NewSessionClaims(1, "backoffice", time.Hour, time.Now().UTC().Add(time.Hour))
		require.ErrorIs(t, claims.ValidateExpiry(), ErrNotYetValid)
	})
}

func TestNewJTIUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 50 {
		id := NewJTI()
		require.NotEmpty(t, id)
		require.False(t, seen[id])
		seen[id] = true
	}
}
