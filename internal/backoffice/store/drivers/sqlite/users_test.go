package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/domain"
	"github.com/webshoplabs/backoffice/internal/backoffice/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st *Store, email string) domain.User {
	t.Helper()

	ctx := context.Background()
	id, err := st.Users().CreateUser(ctx, domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$dummy",
	})
	require.NoError(t, err)

	user, err := st.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user := seedUser(t, st, "alice@example.com")
	require.NotZero(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.Nil(t, user.ResetTokenHash)
	require.Nil(t, user.ResetTokenExpiry)
	require.False(t, user.CreatedAt.IsZero())

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := st.Users().CreateUser(ctx, domain.User{
			Name:         "Other",
			Email:        "alice@example.com",
			PasswordHash: "hash",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seeded := seedUser(t, st, "bob@example.com")

	user, err := st.Users().GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, user.ID)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetResetToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "carol@example.com")

	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, st.Users().SetResetToken(ctx, user.ID, "fingerprint-1", expiry))

	got, err := st.Users().GetUserByResetTokenHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.ResetTokenExpiry)
	require.WithinDuration(t, expiry, *got.ResetTokenExpiry, time.Second)

	t.Run("second token replaces the first", func(t *testing.T) {
		require.NoError(t, st.Users().SetResetToken(ctx, user.ID, "fingerprint-2", expiry))

		_, err := st.Users().GetUserByResetTokenHash(ctx, "fingerprint-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := st.Users().GetUserByResetTokenHash(ctx, "fingerprint-2")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := st.Users().SetResetToken(ctx, 99999, "fingerprint-3", expiry)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConsumeResetToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "dave@example.com")

	expiry := time.Now().UTC().Add(time.Hour)
	require.NoError(t, st.Users().SetResetToken(ctx, user.ID, "consume-me", expiry))

	require.NoError(t, st.Users().ConsumeResetToken(ctx, "consume-me", "new-hash"))

	got, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Nil(t, got.ResetTokenHash)
	require.Nil(t, got.ResetTokenExpiry)

	t.Run("token is single use", func(t *testing.T) {
		err := st.Users().ConsumeResetToken(ctx, "consume-me", "another-hash")
		require.ErrorIs(t, err, store.ErrNotFound)

		// The replay must not have touched the hash.
		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)
	})
}

func TestUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "erin@example.com")

	// A pending reset token must survive a direct password change.
	expiry := time.Now().UTC().Add(time.Hour)
	require.NoError(t, st.Users().SetResetToken(ctx, user.ID, "pending", expiry))

	require.NoError(t, st.Users().UpdatePasswordHash(ctx, user.ID, "changed-hash"))

	got, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "changed-hash", got.PasswordHash)
	require.NotNil(t, got.ResetTokenHash)

	require.ErrorIs(t, st.Users().UpdatePasswordHash(ctx, 99999, "x"), store.ErrNotFound)
}

func TestClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	expired := seedUser(t, st, "expired@example.com")
	live := seedUser(t, st, "live@example.com")

	require.NoError(t, st.Users().SetResetToken(ctx, expired.ID, "stale",
		time.Now().UTC().Add(-time.Minute)))
	require.NoError(t, st.Users().SetResetToken(ctx, live.ID, "fresh",
		time.Now().UTC().Add(time.Hour)))

	require.NoError(t, st.Users().ClearExpiredResetTokens(ctx))

	_, err := st.Users().GetUserByResetTokenHash(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByResetTokenHash(ctx, "fresh")
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sentinel := store.ErrAlreadyExists
	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, domain.User{
			Name:         "Ghost",
			Email:        "ghost@example.com",
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Users().GetUserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
