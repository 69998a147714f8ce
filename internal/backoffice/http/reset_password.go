package http

import (
	"errors"
	"net/http"

	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

type ResetPasswordHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP godoc
//
//	@Summary		Reset Password Endpoint
//	@Description	Redeem an emailed reset token and set a new password. The
//	@Description	token is single-use; redeeming it again fails.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.ResetPasswordRequest	true	"token, newPassword, confirmPassword"
//	@Success		200		{object}	adminsdk.MessageResponse		"message"
//	@Failure		400		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"message"
//	@Router			/user/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	err := h.CredentialService.ResetPassword(ctx,
		req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var valErr *service.ValidationError
		switch {
		case errors.As(err, &valErr):
			httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
				Message: valErr.Message,
			})
		case errors.Is(err, service.ErrInvalidResetToken):
			httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
				Message: "Invalid token",
			})
		case errors.Is(err, service.ErrResetTokenExpired):
			httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
				Message: "Token has expired. Please request a new one.",
			})
		default:
			log.Error("failed to reset password", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, adminsdk.ErrorResponse{
				Message: "Failed to reset password",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.MessageResponse{
		Message: "Password reset successful! You can now log in.",
	})
}
