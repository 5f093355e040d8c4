package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ops-backend/internal/shared/util"
)

// PGAccounts reads accounts from the users table.
type PGAccounts struct {
	DB *sql.DB
}

const accountColumns = `user_id, user_first_name, user_last_name, email, password, is_active, is_staff, is_superuser`

func (r *PGAccounts) ByEmail(ctx context.Context, email string) (Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return r.one(ctx, query, email)
}

func (r *PGAccounts) ByID(ctx context.Context, id int64) (Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM users WHERE user_id = $1`
	return r.one(ctx, query, id)
}

func (r *PGAccounts) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE user_id = $2`, at, id)
	return err
}

func (r *PGAccounts) one(ctx context.Context, query string, arg any) (Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.PasswordHash,
		&a.Active,
		&a.Staff,
		&a.Superuser,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

// PGSessions stores sessions in the sessions table, keyed by the hash of the
// session id.
type PGSessions struct {
	DB *sql.DB
}

func (r *PGSessions) Create(ctx context.Context, s Session) error {
	const query = `
INSERT INTO sessions (session_key, user_id, expires_at)
VALUES ($1, $2, $3)`
	if _, err := r.DB.ExecContext(ctx, query, util.HashKey(s.Key), s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *PGSessions) Get(ctx context.Context, key string) (Session, error) {
	const query = `
SELECT user_id, expires_at
FROM sessions
WHERE session_key = $1 AND expires_at > now()`
	s := Session{Key: key}
	err := r.DB.QueryRowContext(ctx, query, util.HashKey(key)).Scan(&s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (r *PGSessions) Delete(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = $1 OR expires_at <= now()`, util.HashKey(key))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
