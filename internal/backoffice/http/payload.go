package http

import (
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/domain"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
)

// userPayload maps a user record onto its public wire form. The password
// hash and reset token columns never leave the service.
func userPayload(u domain.User) adminsdk.UserPayload {
	return adminsdk.UserPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
