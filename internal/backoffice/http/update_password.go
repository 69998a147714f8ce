package http

import (
	"errors"
	"net/http"

	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

type UpdatePasswordHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP godoc
//
//	@Summary		Update Password Endpoint
//	@Description	Change a logged-in user's password after verifying the
//	@Description	current one. Requires a valid session token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.UpdatePasswordRequest	true	"userId, currentPassword, newPassword, confirmPassword"
//	@Success		200		{object}	adminsdk.MessageResponse		"message"
//	@Failure		400		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		401		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		404		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"message"
//	@Security		BearerAuth
//	@Router			/user/update-password [post].
func (h *UpdatePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.UpdatePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	err := h.CredentialService.ChangePassword(ctx,
		req.UserID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var valErr *service.ValidationError
		switch {
		case errors.As(err, &valErr):
			httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
				Message: valErr.Message,
			})
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, adminsdk.ErrorResponse{
				Message: "User not found",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteJSON(w, http.StatusUnauthorized, adminsdk.ErrorResponse{
				Message: "Incorrect current password",
			})
		default:
			log.Error("failed to update password", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, adminsdk.ErrorResponse{
				Message: "Failed to update password",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.MessageResponse{
		Message: "Password updated successfully!",
	})
}
