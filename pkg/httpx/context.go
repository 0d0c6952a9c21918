package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated subject id through the request
// context once AuthnMiddleware has verified the token.
const CtxKeyUserID ctxKey = "user_id"

// UserIDFromContext returns the authenticated user id, or "" when the
// request did not pass through AuthnMiddleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
