package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestHS256SignAndVerify(t *testing.T) {
	t.Parallel()

	signer := NewHS256(testSecret)
	claims := NewSessionClaims(42, "backoffice", time.Hour, time.Now().UTC())

	raw, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := signer.Verify(raw)
	require.NoError(t, err)

	userID, err := got.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
	require.Equal(t, "backoffice", got.Issuer)
}

func TestHS256RejectsTamperedToken(t *testing.T) {
	t.Parallel()

	signer := NewHS256(testSecret)
	raw, err := signer.Sign(NewSessionClaims(1, "backoffice", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = signer.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewHS256(testSecret)
	raw, err := signer.Sign(NewSessionClaims(1, "backoffice", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	other := NewHS256([]byte("ffffffffffffffffffffffffffffffff"))
	_, err = other.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer := NewHS256(testSecret)
	issued := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := signer.Sign(NewSessionClaims(1, "backoffice", time.Hour, issued))
	require.NoError(t, err)

	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsGarbage(t *testing.T) {
	t.Parallel()

	signer := NewHS256(testSecret)
	_, err := signer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewHS256(testSecret).Validate())
	require.Error(t, NewHS256([]byte("short")).Validate())
}
