package http

import (
	"errors"
	"net/http"

	"github.com/webshoplabs/backoffice/internal/backoffice/mail"
	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

type ForgotPasswordHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP godoc
//
//	@Summary		Forgot Password Endpoint
//	@Description	Issue a single-use password reset token and email the reset
//	@Description	link. A repeated request replaces the previous token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.ForgotPasswordRequest	true	"email"
//	@Success		200		{object}	adminsdk.MessageResponse		"message"
//	@Failure		404		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		502		{object}	adminsdk.ErrorResponse			"message"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"message"
//	@Router			/user/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	if err := h.CredentialService.ForgotPassword(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, adminsdk.ErrorResponse{
				Message: "User not found",
			})
		case errors.Is(err, mail.ErrDelivery):
			log.Error("failed to send reset mail", "err", err)
			httpx.WriteJSON(w, http.StatusBadGateway, adminsdk.ErrorResponse{
				Message: "Failed to send reset email",
			})
		default:
			log.Error("failed to issue reset token", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, adminsdk.ErrorResponse{
				Message: "Failed to process reset request",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.MessageResponse{
		Message: "Password reset link sent to your email",
	})
}
