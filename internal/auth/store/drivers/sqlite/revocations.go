package sqlite

import (
	"context"
	"time"
)

type revocationsRepo struct {
	q   *queries
	now func() time.Time
}

// Revoke inserts the jti once; repeated calls keep the first revoked_at and
// report false.
func (r *revocationsRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	return r.q.revokeToken(ctx, jti, r.now().Unix(), expiresAt.Unix())
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.q.isRevoked(ctx, jti)
}

func (r *revocationsRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.q.deleteExpiredRevocations(ctx, now.Unix())
}
