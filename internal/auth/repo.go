package auth

import (
	"context"
	"time"
)

// Accounts looks up users for authentication.
type Accounts interface {
	ByEmail(ctx context.Context, email string) (Account, error)
	ByID(ctx context.Context, id int64) (Account, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// SessionStore persists sessions. Get returns ErrSessionNotFound for missing
// or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, key string) (Session, error)
	Delete(ctx context.Context, key string) error
}
