package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims" // full jwtx.Claims if a handler needs them
)

// UserIDFromCtx returns the authenticated user id, or 0 when the request
// carried no verified session token.
func UserIDFromCtx(ctx context.Context) int64 {
	if v, ok := ctx.Value(CtxKeyUserID).(int64); ok {
		return v
	}
	return 0
}
