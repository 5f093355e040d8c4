package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAccountNotFound    = errors.New("account not found")
)

// Account is the slice of a user row the auth gateway needs.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Active       bool
	Staff        bool
	Superuser    bool
}

// Session is a server-side login record. Key is the raw session id carried
// inside the signed cookie.
type Session struct {
	Key       string
	UserID    int64
	ExpiresAt time.Time
}
