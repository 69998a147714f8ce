package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/webshoplabs/backoffice/internal/backoffice/domain"
	"github.com/webshoplabs/backoffice/internal/backoffice/mail"
	"github.com/webshoplabs/backoffice/internal/backoffice/metrics"
	"github.com/webshoplabs/backoffice/internal/backoffice/store"
	"github.com/webshoplabs/backoffice/pkg/cryptox"
	"github.com/webshoplabs/backoffice/pkg/jwtx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("user exists already")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrResetTokenExpired  = errors.New("reset token has expired")
)

// ValidationError reports the first failed input rule. The message is safe
// to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// validate backs the email-format rule only; the remaining rules are
// explicit checks so their precedence stays fixed.
var validate = validator.New()

const (
	minNameLength     = 4
	minPasswordLength = 8

	defaultResetTokenTTL = time.Hour
)

// CredentialService orchestrates registration, login and the password
// lifecycle over the credential store, hasher, token issuer and mail
// dispatcher.
type CredentialService struct {
	Store  store.Store
	Signer jwtx.Signer
	Mail   mail.Dispatcher

	Issuer     string
	SessionTTL time.Duration

	// ResetTokenTTL bounds how long an emailed reset link stays valid.
	ResetTokenTTL time.Duration

	// ResetBaseURL is the browser client's reset page; token and email are
	// appended as query parameters.
	ResetBaseURL string
}

// Register creates a new account and logs it in.
func (s *CredentialService) Register(
	ctx context.Context,
	name, email, password, confirmPassword string,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate in fixed precedence: presence, name length, email
	// format, password length, password match.
	if err := validateRegistration(name, email, password, confirmPassword); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return domain.User{}, "", err
	}

	// 2. Hash outside the transaction; argon2 is deliberately slow.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	// 3. Check-then-insert atomically. The unique index backs up the check
	// for two registrations racing on the same email.
	var created domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		id, err := tx.Users().CreateUser(ctx, domain.User{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		created, err = tx.Users().GetUserByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			log.Warn("registration attempted with taken email")
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return domain.User{}, "", err
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.issueSession(created.ID)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user registered", slog.Int64("user_id", created.ID))
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return created, token, nil
}

// Login verifies the password and issues a session token.
func (s *CredentialService) Login(
	ctx context.Context,
	email, password string,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			return domain.User{}, "", ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login failed", slog.Int64("user_id", user.ID))
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, token, nil
}

// ForgotPassword issues a fresh reset token and mails the reset link. A
// second call overwrites the previous token, invalidating it immediately.
// The token is persisted before dispatch so a slow mail server never holds
// a store lock; a hung dispatch does not roll the token back.
func (s *CredentialService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("password reset requested for unknown email")
			return ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return err
	}

	if user.HasPendingReset() {
		log.Info("replacing outstanding reset token", slog.Int64("user_id", user.ID))
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return err
	}

	expiresAt := time.Now().UTC().Add(s.resetTokenTTL())
	fingerprint := cryptox.FingerprintToken(token)

	if err := s.Store.Users().SetResetToken(ctx, user.ID, fingerprint, expiresAt); err != nil {
		log.Error("failed to store reset token", slog.Any("error", err))
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s&email=%s",
		s.ResetBaseURL, token, url.QueryEscape(email))
	body := fmt.Sprintf(
		`<p>Click the link below to reset your password:</p>
<a href=%q>%s</a>
<p>This link will expire in 1 hour.</p>`,
		resetLink, resetLink)

	if err := s.Mail.Send(ctx, email, "Password Reset Request", body); err != nil {
		log.Error("failed to dispatch reset mail",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		metrics.MailErrorsTotal.Inc()
		return err
	}

	log.Info("reset token issued",
		slog.Int64("user_id", user.ID),
		slog.Time("expires_at", expiresAt),
	)
	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
// The token is single-use: hash replacement and token clearing are one
// atomic write keyed on the token, so a replay or a raced second call
// fails with ErrInvalidResetToken. An expired token is left in place; a
// fresh ForgotPassword call overwrites it.
func (s *CredentialService) ResetPassword(
	ctx context.Context,
	token, newPassword, confirmPassword string,
) error {
	log := slogx.FromContext(ctx)

	// Confirmation mismatch fails before any store access.
	if newPassword != confirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	fingerprint := cryptox.FingerprintToken(token)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByResetTokenHash(ctx, fingerprint)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}

		// Valid only while the expiry is strictly in the future.
		if user.ResetTokenExpiry == nil || !user.ResetTokenExpiry.After(time.Now().UTC()) {
			return ErrResetTokenExpired
		}

		if err := tx.Users().ConsumeResetToken(ctx, fingerprint, newHash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrInvalidResetToken):
		log.Warn("reset attempted with unknown token")
		metrics.PasswordResetsTotal.WithLabelValues("invalid_token").Inc()
		return err
	case errors.Is(err, ErrResetTokenExpired):
		log.Warn("reset attempted with expired token")
		metrics.PasswordResetsTotal.WithLabelValues("expired").Inc()
		return err
	case err != nil:
		log.Error("failed to reset password", slog.Any("error", err))
		return err
	}

	log.Info("password reset completed")
	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return nil
}

// ChangePassword replaces the hash for a logged-in user after verifying
// the current password. Reset-token fields are untouched.
func (s *CredentialService) ChangePassword(
	ctx context.Context,
	userID int64,
	currentPassword, newPassword, confirmPassword string,
) error {
	log := slogx.FromContext(ctx)

	if userID == 0 || currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return &ValidationError{Message: "All fields are required"}
	}
	if newPassword != confirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		log.Warn("password change with wrong current password",
			slog.Int64("user_id", user.ID),
		)
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		log.Error("failed to update password hash", slog.Any("error", err))
		return err
	}

	log.Info("password changed", slog.Int64("user_id", user.ID))
	return nil
}

func (s *CredentialService) issueSession(userID int64) (string, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	claims := jwtx.NewSessionClaims(userID, s.Issuer, ttl, time.Now().UTC())
	return s.Signer.Sign(claims)
}

func (s *CredentialService) resetTokenTTL() time.Duration {
	if s.ResetTokenTTL <= 0 {
		return defaultResetTokenTTL
	}
	return s.ResetTokenTTL
}

// validateRegistration applies the registration rules in their fixed
// order and reports the first failure.
func validateRegistration(name, email, password, confirmPassword string) error {
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return &ValidationError{Message: "All fields are required!"}
	}
	if len(name) < minNameLength {
		return &ValidationError{Message: "Name should have at least 4 characters!"}
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{Message: "Invalid email! Please enter a valid email!"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Message: "Password should have at least 8 characters"}
	}
	if password != confirmPassword {
		return &ValidationError{Message: "Password and confirm password don't match!"}
	}
	return nil
}
