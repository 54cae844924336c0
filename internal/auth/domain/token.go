package domain

import "time"

// IssuedToken is one signed JWT together with the values the cookie binder
// and revocation store need.
type IssuedToken struct {
	Raw       string
	JTI       string
	ExpiresAt time.Time
	TTL       time.Duration
}

// TokenPair is what a successful login or rotating refresh hands to the
// cookie binder. Refresh is nil when only the access token was renewed.
type TokenPair struct {
	Access  IssuedToken
	Refresh *IssuedToken
}

// RevocationEntry records a refresh token that must no longer be honored.
// ExpiresAt is the token's own exp so expired entries can be purged.
type RevocationEntry struct {
	JTI       string
	RevokedAt time.Time
	ExpiresAt time.Time
}
