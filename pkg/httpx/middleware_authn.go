package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/webshoplabs/backoffice/pkg/jwtx"
	"github.com/webshoplabs/backoffice/pkg/slogx"
)

// AuthnMiddleware verifies the bearer session token and injects the bound
// user id into the request context. It authenticates only; there are no
// roles or scopes in this system.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("session token verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				writeBearerError(w, "token verification failed")
				return
			}

			// Inject into context for downstream handlers.
			ctx = context.WithValue(ctx, CtxKeyUserID, userID)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
