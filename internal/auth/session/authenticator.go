package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/backrose/backrose/internal/auth/domain"
	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/pkg/jwtx"
)

// Authentication failure details returned to clients.
const (
	DetailTokenExpired   = "Token expired"
	DetailInvalidToken   = "Invalid token"
	DetailMalformedToken = "Malformed token"
	DetailUserNotFound   = "User not found or inactive"
	DetailNotProvided    = "Authentication credentials were not provided."
)

// Kind separates authentication failures (401) from permission failures (403).
type Kind int

const (
	KindAuthenticationFailed Kind = iota + 1
	KindPermissionDenied
)

// AuthError is the typed failure of Authenticate.
type AuthError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *AuthError) Unwrap() error { return e.Err }

// Status maps the kind onto an HTTP status code.
func (e *AuthError) Status() int {
	if e.Kind == KindPermissionDenied {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

func authFailed(detail string, err error) *AuthError {
	return &AuthError{Kind: KindAuthenticationFailed, Detail: detail, Err: err}
}

// Authentication is a resolved principal and the claims that proved it.
type Authentication struct {
	User   domain.User
	Claims jwtx.Claims
}

// Authenticator resolves the access cookie of a request to a user and
// enforces CSRF on unsafe methods once the user is known.
type Authenticator struct {
	Codec   *jwtx.Codec
	Users   service.UserLookup
	Cookies *CookieBinder
	CSRF    *CSRFGuard
}

// Authenticate returns (nil, nil) for anonymous requests. Failures are
// *AuthError; any other error is an infrastructure failure.
func (a *Authenticator) Authenticate(r *http.Request) (*Authentication, error) {
	raw := a.Cookies.AccessToken(r)
	if raw == "" {
		return nil, nil
	}

	claims, err := a.Codec.Decode(raw, jwtx.TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			return nil, authFailed(DetailTokenExpired, err)
		case errors.Is(err, jwtx.ErrMalformed):
			return nil, authFailed(DetailMalformedToken, err)
		default:
			return nil, authFailed(DetailInvalidToken, err)
		}
	}

	user, err := a.Users.GetActiveUser(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, authFailed(DetailUserNotFound, err)
		}
		return nil, err
	}

	if !Safe(r.Method) {
		if reason := a.CSRF.Check(r); reason != "" {
			return nil, &AuthError{Kind: KindPermissionDenied, Detail: "CSRF Failed: " + reason}
		}
	}

	return &Authentication{User: user, Claims: claims}, nil
}
