package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/backrose/backrose/pkg/httpx"
	"github.com/backrose/backrose/pkg/slogx"
)

type ctxKey struct{}

// WithAuthentication stores auth in ctx, along with the user id that rate
// limiting and logging read.
func WithAuthentication(ctx context.Context, auth *Authentication) context.Context {
	ctx = context.WithValue(ctx, ctxKey{}, auth)
	ctx = httpx.WithUserID(ctx, auth.User.ID)
	return slogx.With(ctx, slog.String("user_id", auth.User.ID))
}

// FromContext returns the authentication stored by Middleware, if any.
func FromContext(ctx context.Context) (*Authentication, bool) {
	auth, ok := ctx.Value(ctxKey{}).(*Authentication)
	return auth, ok && auth != nil
}

// Observer receives authentication outcomes, e.g. for metrics.
type Observer interface {
	AuthFailed(err *AuthError)
}

// Middleware authenticates every request. Failures are answered with
// {"detail": ...} and the matching status; anonymous requests pass through
// without an Authentication in the context.
func (a *Authenticator) Middleware(obs Observer) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, err := a.Authenticate(r)
			if err != nil {
				var aerr *AuthError
				if errors.As(err, &aerr) {
					slogx.FromContext(r.Context()).Info("request authentication failed",
						slog.String("detail", aerr.Detail),
						slog.String("path", r.URL.Path),
					)
					if obs != nil {
						obs.AuthFailed(aerr)
					}
					httpx.WriteDetail(w, aerr.Status(), aerr.Detail)
					return
				}

				slogx.FromContext(r.Context()).Error("authentication lookup failed", slog.Any("error", err))
				httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			if auth != nil {
				r = r.WithContext(WithAuthentication(r.Context(), auth))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthentication rejects anonymous requests with 401. It must run
// after Middleware.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			httpx.WriteDetail(w, http.StatusUnauthorized, DetailNotProvided)
			return
		}
		next.ServeHTTP(w, r)
	})
}
