package http

import (
	"errors"
	"net/http"

	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

type LoginHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Authenticate a user by email and password. Returns the public
//	@Description	user payload together with a fresh session token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	adminsdk.AuthResponse	"status, data, token"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"message"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"message"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"message"
//	@Router			/user/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	user, token, err := h.CredentialService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, adminsdk.ErrorResponse{
				Message: "User email is not registered. Please sign up.",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteJSON(w, http.StatusUnauthorized, adminsdk.ErrorResponse{
				Message: "Invalid email or password",
			})
		default:
			log.Error("failed to log user in", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, adminsdk.ErrorResponse{
				Message: "Failed to log in",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.AuthResponse{
		Status: "Success!",
		Data:   userPayload(user),
		Token:  token,
	})
}
