package store

import (
	"context"
	"errors"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// Tx-scoped store cannot start a second transaction.
type Store interface {
	Users() Users
	Profiles() Profiles
	Revocations() Revocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. The match is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUsername mutates the display name and bumps updated_at.
	UpdateUsername(ctx context.Context, userID, username string) error

	// SetActive enables or disables login for a user.
	SetActive(ctx context.Context, userID string, active bool) error
}

type Profiles interface {
	// GetProfile returns the profile belonging to userID.
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)

	// CreateProfile inserts the profile created alongside a new user.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdateProfile overwrites app_header and image and bumps updated_at.
	UpdateProfile(ctx context.Context, p domain.Profile) error
}

// Revocations records refresh tokens that were logged out or rotated away.
// Every method is safe for concurrent use; Revoke is idempotent and a
// subsequent IsRevoked on the same jti observes it.
type Revocations interface {
	// Revoke records jti. It reports true only for the call that inserted
	// the entry, so concurrent callers can claim a token exactly once.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpired drops entries whose token has expired anyway, returning
	// how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
