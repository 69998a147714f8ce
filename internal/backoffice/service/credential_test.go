package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/mail"
	"github.com/webshoplabs/backoffice/internal/backoffice/store"
	"github.com/webshoplabs/backoffice/internal/backoffice/store/drivers/sqlite"
	"github.com/webshoplabs/backoffice/pkg/cryptox"
	"github.com/webshoplabs/backoffice/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "backoffice-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// stubDispatcher records sent mail and can be told to fail.
type stubDispatcher struct {
	mu   sync.Mutex
	sent []stubMail
	fail bool
}

type stubMail struct {
	To      string
	Subject string
	Body    string
}

func (d *stubDispatcher) Send(ctx context.Context, to, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return fmt.Errorf("%w: connection refused", mail.ErrDelivery)
	}
	d.sent = append(d.sent, stubMail{To: to, Subject: subject, Body: body})
	return nil
}

func (d *stubDispatcher) last(t *testing.T) stubMail {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sent)
	return d.sent[len(d.sent)-1]
}

func newTestService(t *testing.T) (*CredentialService, *stubDispatcher) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	dispatcher := &stubDispatcher{}
	svc := &CredentialService{
		Store:        st,
		Signer:       jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef")),
		Mail:         dispatcher,
		Issuer:       "backoffice-test",
		ResetBaseURL: "http://localhost:5173/reset-password",
	}
	return svc, dispatcher
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, token, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "Alice", user.Name)
	require.NotEmpty(t, token)

	// The returned token must be a verifiable session bound to the user.
	claims, err := svc.Signer.(*jwtx.HS256).Verify(token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	t.Run("same email conflicts", func(t *testing.T) {
		_, _, err := svc.Register(ctx,
			"Alice Again", "alice@example.com", "password456", "password456")
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		user    [4]string // name, email, password, confirm
		message string
	}{
		{
			"missing fields",
			[4]string{"", "a@example.com", "password123", "password123"},
			"All fields are required!",
		},
		{
			"short name",
			[4]string{"Al", "a@example.com", "password123", "password123"},
			"Name should have at least 4 characters!",
		},
		{
			"bad email",
			[4]string{"Alice", "not-an-email", "password123", "password123"},
			"Invalid email! Please enter a valid email!",
		},
		{
			"short password",
			[4]string{"Alice", "a@example.com", "short", "short"},
			"Password should have at least 8 characters",
		},
		{
			"mismatched passwords",
			[4]string{"Alice", "a@example.com", "password123", "password456"},
			"Password and confirm password don't match!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.user[0], tt.user[1], tt.user[2], tt.user[3])
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			require.Equal(t, tt.message, valErr.Message)
		})
	}

	t.Run("validation precedence", func(t *testing.T) {
		// A short name with a bad email reports the name rule first.
		_, _, err := svc.Register(ctx, "Al", "not-an-email", "short", "other")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Equal(t, "Name should have at least 4 characters!", valErr.Message)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, registered.ID, user.ID)
		require.NotEmpty(t, token)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "password123")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// extractToken pulls the plaintext reset token out of the emailed link.
func extractToken(t *testing.T, body string) string {
	t.Helper()
	start := strings.Index(body, "token=")
	require.GreaterOrEqual(t, start, 0, "mail body should carry a reset link")
	rest := body[start+len("token="):]
	end := strings.IndexAny(rest, "&\"")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newTestService(t)

	_, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	t.Run("sends a reset link", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

		sent := dispatcher.last(t)
		require.Equal(t, "alice@example.com", sent.To)
		require.Equal(t, "Password Reset Request", sent.Subject)
		require.Contains(t, sent.Body, "http://localhost:5173/reset-password?token=")
		require.Contains(t, sent.Body, "email=alice%40example.com")
		require.Contains(t, sent.Body, "expire in 1 hour")

		// Only the fingerprint is persisted, never the token itself.
		token := extractToken(t, sent.Body)
		_, err := svc.Store.Users().GetUserByResetTokenHash(ctx, token)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = svc.Store.Users().GetUserByResetTokenHash(ctx, cryptox.FingerprintToken(token))
		require.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		require.ErrorIs(t, svc.ForgotPassword(ctx, "nobody@example.com"), ErrUserNotFound)
	})

	t.Run("mail failure surfaces", func(t *testing.T) {
		dispatcher.fail = true
		defer func() { dispatcher.fail = false }()

		err := svc.ForgotPassword(ctx, "alice@example.com")
		require.ErrorIs(t, err, mail.ErrDelivery)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newTestService(t)

	_, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	token := extractToken(t, dispatcher.last(t).Body)

	t.Run("mismatch fails before the store is touched", func(t *testing.T) {
		err := svc.ResetPassword(ctx, token, "new-password-1", "new-password-2")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Equal(t, "Passwords do not match", valErr.Message)

		// The token survives the failed attempt.
		_, err = svc.Store.Users().GetUserByResetTokenHash(ctx, cryptox.FingerprintToken(token))
		require.NoError(t, err)
	})

	t.Run("redeems the token", func(t *testing.T) {
		require.NoError(t, svc.ResetPassword(ctx, token, "new-password", "new-password"))

		_, _, err := svc.Login(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)
		_, _, err = svc.Login(ctx, "alice@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token is single use", func(t *testing.T) {
		err := svc.ResetPassword(ctx, token, "yet-another", "yet-another")
		require.ErrorIs(t, err, ErrInvalidResetToken)

		// The raced attempt must not have replaced the password.
		_, _, err = svc.Login(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := svc.ResetPassword(ctx, "never-issued", "whatever1", "whatever1")
		require.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestResetPasswordExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	// Plant a token whose expiry has already passed.
	token := "expired-token"
	require.NoError(t, svc.Store.Users().SetResetToken(ctx,
		user.ID, cryptox.FingerprintToken(token), time.Now().UTC().Add(-time.Minute)))

	err = svc.ResetPassword(ctx, token, "new-password", "new-password")
	require.ErrorIs(t, err, ErrResetTokenExpired)

	// The expired token stays in place until overwritten or swept.
	_, err = svc.Store.Users().GetUserByResetTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)

	// The password is unchanged.
	_, _, err = svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
}

func TestForgotPasswordInvalidatesPreviousToken(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newTestService(t)

	_, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	first := extractToken(t, dispatcher.last(t).Body)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	second := extractToken(t, dispatcher.last(t).Body)
	require.NotEqual(t, first, second)

	// The first token is dead and the second redeems.
	require.ErrorIs(t,
		svc.ResetPassword(ctx, first, "new-password", "new-password"),
		ErrInvalidResetToken)
	require.NoError(t,
		svc.ResetPassword(ctx, second, "new-password", "new-password"))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, _, err := svc.Register(ctx,
		"Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	t.Run("missing fields", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "", "new-password", "new-password")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Equal(t, "All fields are required", valErr.Message)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "password123", "new-password", "other")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Equal(t, "Passwords do not match", valErr.Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(ctx, 99999, "password123", "new-password", "new-password")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "not-the-password", "new-password", "new-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx,
			user.ID, "password123", "new-password", "new-password"))

		_, _, err := svc.Login(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)
		_, _, err = svc.Login(ctx, "alice@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// TestFullLifecycle walks one account through every credential operation.
func TestFullLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newTestService(t)

	_, token, err := svc.Register(ctx,
		"Alice", "alice@example.com", "initial-pass", "initial-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, _, err := svc.Login(ctx, "alice@example.com", "initial-pass")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx,
		user.ID, "initial-pass", "changed-pass", "changed-pass"))

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	resetToken := extractToken(t, dispatcher.last(t).Body)
	require.NoError(t, svc.ResetPassword(ctx, resetToken, "final-pass", "final-pass"))

	_, _, err = svc.Login(ctx, "alice@example.com", "final-pass")
	require.NoError(t, err)
}
