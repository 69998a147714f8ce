package http

import (
	"errors"
	"net/http"

	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/pkg/adminsdk"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

type RegisterHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP godoc
//
//	@Summary		Register Endpoint
//	@Description	Create a new user account and log it in. Returns the public
//	@Description	user payload together with a signed session token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.RegisterRequest	true	"name, email, password, confirmPassword"
//	@Success		201		{object}	adminsdk.AuthResponse		"status, data, token"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"message"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"status, message"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"message"
//	@Router			/user/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	user, token, err := h.CredentialService.Register(ctx,
		req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		var valErr *service.ValidationError
		switch {
		case errors.As(err, &valErr):
			httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
				Message: valErr.Message,
			})
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteJSON(w, http.StatusConflict, adminsdk.ErrorResponse{
				Status:  "failed",
				Message: "User exists already",
			})
		default:
			log.Error("failed to register user", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, adminsdk.ErrorResponse{
				Message: "Failed to register user",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, adminsdk.AuthResponse{
		Status: "success",
		Data:   userPayload(user),
		Token:  token,
	})
}
