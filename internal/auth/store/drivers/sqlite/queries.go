package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repo runs the same
// statements inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries { return &queries{db: db} }

const userColumns = `id, email, username, password_hash, is_active, created_at, updated_at`

type userRow struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *queries) getUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *queries) getUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

func (q *queries) createUser(ctx context.Context, u userRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return err
}

func (q *queries) updateUsername(ctx context.Context, id, username string, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET username = ?, updated_at = ? WHERE id = ?`, username, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) setActive(ctx context.Context, id string, active bool, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type profileRow struct {
	UserID    string
	AppHeader string
	Image     string
	UpdatedAt time.Time
}

func (q *queries) getProfile(ctx context.Context, userID string) (profileRow, error) {
	var p profileRow
	err := q.db.QueryRowContext(ctx,
		`SELECT user_id, app_header, image, updated_at FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.AppHeader, &p.Image, &p.UpdatedAt)
	return p, err
}

func (q *queries) createProfile(ctx context.Context, p profileRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, app_header, image, updated_at) VALUES (?, ?, ?, ?)`,
		p.UserID, p.AppHeader, p.Image, p.UpdatedAt)
	return err
}

func (q *queries) updateProfile(ctx context.Context, p profileRow) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE profiles SET app_header = ?, image = ?, updated_at = ? WHERE user_id = ?`,
		p.AppHeader, p.Image, p.UpdatedAt, p.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) revokeToken(ctx context.Context, jti string, revokedAt, expiresAt int64) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, revoked_at, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (jti) DO NOTHING`, jti, revokedAt, expiresAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (q *queries) isRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	return n > 0, err
}

func (q *queries) deleteExpiredRevocations(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
