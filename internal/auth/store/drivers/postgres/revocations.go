package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/backrose/backrose/internal/auth/store/drivers/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

// Revocations persists revoked refresh token jtis in PostgreSQL so several
// instances share one revocation list.
type Revocations struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Revocations instance.
type Option func(*Revocations)

// WithClock sets the clock used for revoked_at.
func WithClock(now func() time.Time) Option {
	return func(r *Revocations) {
		if now != nil {
			r.now = now
		}
	}
}

// Open connects to dsn with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Revocations, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return NewRevocations(db, opts...), nil
}

// NewRevocations wraps an open database handle.
func NewRevocations(db *sql.DB, opts ...Option) *Revocations {
	r := &Revocations{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ApplyMigrations creates the revoked_tokens table if needed.
func (r *Revocations) ApplyMigrations() error {
	driver, err := pgmigrate.WithInstance(r.db, &pgmigrate.Config{
		MigrationsTable: "backrose_schema_migrations",
	})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Revoke is an idempotent upsert; the first revoked_at wins and only that
// call reports true.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	const query = `
		INSERT INTO revoked_tokens (jti, revoked_at, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, jti, r.now().UTC(), expiresAt.UTC())
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return n == 1, nil
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return exists, nil
}

func (r *Revocations) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the connection for readiness probes.
func (r *Revocations) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Revocations) Close() error {
	return r.db.Close()
}
