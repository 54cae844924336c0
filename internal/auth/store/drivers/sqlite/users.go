package sqlite

import (
	"context"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
)

type usersRepo struct {
	q   *queries
	now func() time.Time
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.getUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.getUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	err := r.q.createUser(ctx, userRow{
		ID:           u.ID,
		Email:        domain.NormalizeEmail(u.Email),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.Active,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    now,
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUsername(ctx context.Context, userID, username string) error {
	return mustAffect(r.q.updateUsername(ctx, userID, username, r.now()))
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return mustAffect(r.q.setActive(ctx, userID, active, r.now()))
}
