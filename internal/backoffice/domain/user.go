package domain

import "time"

// User is an administrative account. The reset-token pair is either both
// set (a reset request is outstanding) or both nil.
type User struct {
	ID               int64
	Name             string
	Email            string
	PasswordHash     string     // argon2id encoded
	ResetTokenHash   *string    // SHA-256 fingerprint of the emailed token (nullable)
	ResetTokenExpiry *time.Time // paired with ResetTokenHash (nullable)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset request is outstanding.
func (u User) HasPendingReset() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil
}
