package store

import (
	"context"
	"errors"
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., consuming
	// a reset token). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail is used during login and forgot-password.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByResetTokenHash looks up the record holding an outstanding
	// reset token by its fingerprint. The token alone is the lookup key.
	GetUserByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error)

	// CreateUser inserts a new user and returns the store-assigned id.
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// SetResetToken stores the token fingerprint and expiry on the record,
	// overwriting any previous pair, and bumps updated_at.
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps
	// updated_at. Reset-token fields are untouched.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// ConsumeResetToken replaces the password hash and clears both
	// reset-token fields in a single write, keyed on the fingerprint.
	// Returns ErrNotFound if no record holds the fingerprint (already
	// consumed or never issued).
	ConsumeResetToken(ctx context.Context, tokenHash string, newHash string) error

	// ClearExpiredResetTokens nulls out token pairs whose expiry has
	// passed. Housekeeping only; an expired pair is already unusable.
	ClearExpiredResetTokens(ctx context.Context) error
}
