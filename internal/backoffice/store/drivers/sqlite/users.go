package sqlite

import (
	"context"
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/domain"
	"github.com/webshoplabs/backoffice/internal/backoffice/store"
)

type usersRepo struct {
	db querier
}

const userColumns = `id, name, email, password_hash, reset_token_hash, reset_token_expiry, created_at, updated_at`

func (r *usersRepo) scanUser(ctx context.Context, query string, args ...any) (domain.User, error) {
	var row userRow
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&row.ID,
		&row.Name,
		&row.Email,
		&row.PasswordHash,
		&row.ResetTokenHash,
		&row.ResetTokenExpiry,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	return r.scanUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, tokenHash)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES (?, ?, ?)
		 RETURNING id`,
		u.Name, u.Email, u.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, mapConflict(err)
	}
	return id, nil
}

func (r *usersRepo) SetResetToken(
	ctx context.Context,
	userID int64,
	tokenHash string,
	expiresAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET reset_token_hash = ?, reset_token_expiry = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		tokenHash, expiresAt.UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		newHash, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ConsumeResetToken is the single-use guarantee: the UPDATE is keyed on the
// fingerprint, so a token consumed by a concurrent request matches zero
// rows and the caller sees ErrNotFound. Hash replacement and token clearing
// happen in the one statement.
func (r *usersRepo) ConsumeResetToken(ctx context.Context, tokenHash string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, reset_token_hash = NULL, reset_token_expiry = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE reset_token_hash = ?`,
		newHash, tokenHash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET reset_token_hash = NULL, reset_token_expiry = NULL
		 WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?`,
		time.Now().UTC(),
	)
	return err
}

func requireRow(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
