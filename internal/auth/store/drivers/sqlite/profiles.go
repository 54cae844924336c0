package sqlite

import (
	"context"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
)

type profilesRepo struct {
	q   *queries
	now func() time.Time
}

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	row, err := r.q.getProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return mapProfile(row), nil
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	if p.AppHeader == "" {
		p.AppHeader = domain.DefaultAppHeader
	}
	err := r.q.createProfile(ctx, profileRow{
		UserID:    p.UserID,
		AppHeader: p.AppHeader,
		Image:     p.Image,
		UpdatedAt: r.now(),
	})
	return mapConstraint(err)
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.Profile) error {
	return mustAffect(r.q.updateProfile(ctx, profileRow{
		UserID:    p.UserID,
		AppHeader: p.AppHeader,
		Image:     p.Image,
		UpdatedAt: r.now(),
	}))
}
