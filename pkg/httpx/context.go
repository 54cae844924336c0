package httpx

import "context"

type ctxKey string

// CtxKeyUserID holds the authenticated user's id. Rate limiting by user and
// request logging read it; the session middleware writes it.
const CtxKeyUserID ctxKey = "user_id"

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}
