package jwtx

import (
	"time"

	"github.com/backrose/backrose/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the cookie session.
// These provide sensible security defaults but can be overridden per-deployment.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType distinguishes access tokens from refresh tokens. A token of one
// type is never accepted where the other is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Claims are the claims embedded in both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is "access" or "refresh".
	TokenType TokenType `json:"token_type"`
}

// NewClaims builds claims for a token of the given type issued at now.
func NewClaims(subject string, typ TokenType, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		TokenType: typ,
	}
}

// JTI returns the token identifier used as the revocation key.
func (c Claims) JTI() string { return c.ID }

// Expiry returns the exp claim, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ValidateExpiry reports ErrExpired once now has reached exp. A token is
// only honored while now < exp.
func (c Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrMalformed
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateType checks the token_type claim against the expected type.
func (c Claims) ValidateType(want TokenType) error {
	if c.TokenType != want {
		return ErrWrongType
	}
	return nil
}
