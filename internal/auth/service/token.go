package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
	"github.com/backrose/backrose/internal/auth/store"
	"github.com/backrose/backrose/pkg/jwtx"
	"github.com/backrose/backrose/pkg/slogx"
)

// UserLookup resolves the subject of a token to an active user.
type UserLookup interface {
	GetActiveUser(ctx context.Context, userID string) (domain.User, error)
}

// TokenService mints and renews the cookie token pair and records
// revocations. It holds no per-session state beyond the revocation list.
type TokenService struct {
	Codec       *jwtx.Codec
	Revocations store.Revocations
	Users       UserLookup
	AccessTTL   time.Duration
	RefreshTTL  time.Duration

	// RotateRefresh issues a new refresh token on every refresh.
	RotateRefresh bool
	// BlacklistAfterRotation revokes the refresh token that was rotated away.
	BlacklistAfterRotation bool
}

// IssuePair mints a fresh access and refresh token for user.
func (s *TokenService) IssuePair(user domain.User) (domain.TokenPair, error) {
	access, err := s.issue(user.ID, jwtx.TokenTypeAccess, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.issue(user.ID, jwtx.TokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: &refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled the pair carries a new refresh token too, and the old jti is
// revoked when BlacklistAfterRotation is set. The revocation is claimed
// before anything is minted, so concurrent refreshes with one rotating
// token yield a single new pair.
//
// Errors:
//   - ErrInvalidRefresh when the token is malformed, expired, mis-signed or of the wrong type
//   - ErrTokenRevoked when the jti was logged out or rotated away
//   - ErrUserNotFound when the subject no longer exists or is inactive
//
// Any other error comes from the revocation store.
func (s *TokenService) Refresh(ctx context.Context, raw string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Decode(raw, jwtx.TokenTypeRefresh)
	if err != nil {
		l.Info("refresh token rejected", slog.String("reason", err.Error()))
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		l.Warn("revoked refresh token presented", slog.String("jti", claims.JTI()), slog.String("sub", claims.Subject))
		return domain.TokenPair{}, ErrTokenRevoked
	}

	user, err := s.Users.GetActiveUser(ctx, claims.Subject)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if s.RotateRefresh && s.BlacklistAfterRotation {
		claimed, err := s.Revocations.Revoke(ctx, claims.JTI(), claims.Expiry())
		if err != nil {
			return domain.TokenPair{}, fmt.Errorf("revoke rotated token: %w", err)
		}
		if !claimed {
			l.Warn("rotated refresh token replayed", slog.String("jti", claims.JTI()), slog.String("sub", claims.Subject))
			return domain.TokenPair{}, ErrTokenRevoked
		}
	}

	access, err := s.issue(user.ID, jwtx.TokenTypeAccess, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	pair := domain.TokenPair{Access: access}

	if !s.RotateRefresh {
		return pair, nil
	}

	refresh, err := s.issue(user.ID, jwtx.TokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	pair.Refresh = &refresh

	return pair, nil
}

// Revoke records the refresh token's jti so it can no longer be exchanged.
// Tokens that fail to decode are already unusable and are ignored.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.Codec.Decode(raw, jwtx.TokenTypeRefresh)
	if err != nil {
		return nil
	}
	_, err = s.Revocations.Revoke(ctx, claims.JTI(), claims.Expiry())
	return err
}

func (s *TokenService) issue(subject string, typ jwtx.TokenType, ttl time.Duration) (domain.IssuedToken, error) {
	raw, claims, err := s.Codec.Issue(subject, typ, ttl)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{
		Raw:       raw,
		JTI:       claims.JTI(),
		ExpiresAt: claims.Expiry(),
		TTL:       ttl,
	}, nil
}
