package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedauth "ops-backend/internal/shared/auth"
	"ops-backend/internal/shared/server/middleware"
	"ops-backend/internal/shared/telemetry"
)

// Service logs users in and out and resolves session cookies.
type Service struct {
	Accounts Accounts
	Sessions SessionStore
	Signer   *sharedauth.Signer
	TTL      time.Duration

	now func() time.Time
}

// NewService wires a Service with a wall clock.
func NewService(accounts Accounts, sessions SessionStore, signer *sharedauth.Signer, ttl time.Duration) *Service {
	return &Service{Accounts: accounts, Sessions: sessions, Signer: signer, TTL: ttl, now: time.Now}
}

// Login checks credentials and opens a session. Unknown email, wrong
// password and inactive account all return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Account, string, time.Time, error) {
	email = strings.TrimSpace(email)
	acc, err := s.Accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			sharedauth.BurnPasswordCheck(password)
			return Account{}, "", time.Time{}, ErrInvalidCredentials
		}
		return Account{}, "", time.Time{}, err
	}
	if !sharedauth.CheckPassword(acc.PasswordHash, password) || !acc.Active {
		return Account{}, "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	sess := Session{Key: uuid.NewString(), UserID: acc.ID, ExpiresAt: now.Add(s.TTL)}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return Account{}, "", time.Time{}, err
	}
	token, err := s.Signer.Sign(sess.Key, acc.ID, sess.ExpiresAt)
	if err != nil {
		return Account{}, "", time.Time{}, err
	}
	if err := s.Accounts.TouchLastLogin(ctx, acc.ID, now); err != nil {
		telemetry.Warn("auth.last_login_failed", map[string]any{"user_id": acc.ID, "error": err})
	}
	return acc, token, sess.ExpiresAt, nil
}

// Logout deletes the session behind cookie. Invalid or missing cookies are
// ignored.
func (s *Service) Logout(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}
	claims, err := s.Signer.Verify(cookie)
	if err != nil {
		return nil
	}
	return s.Sessions.Delete(ctx, claims.SessionID)
}

// Resolve implements middleware.SessionResolver.
func (s *Service) Resolve(ctx context.Context, cookie string) (middleware.Identity, error) {
	claims, err := s.Signer.Verify(cookie)
	if err != nil {
		return middleware.Identity{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return middleware.Identity{}, err
	}
	sess, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return middleware.Identity{}, err
	}
	if sess.UserID != userID {
		return middleware.Identity{}, fmt.Errorf("%w: user mismatch", ErrSessionNotFound)
	}
	acc, err := s.Accounts.ByID(ctx, userID)
	if err != nil {
		return middleware.Identity{}, err
	}
	if !acc.Active {
		return middleware.Identity{}, ErrSessionNotFound
	}
	return middleware.Identity{UserID: acc.ID, SessionID: sess.Key, Staff: acc.Staff}, nil
}

// Profile returns the account of the current user.
func (s *Service) Profile(ctx context.Context, userID int64) (Account, error) {
	return s.Accounts.ByID(ctx, userID)
}

var _ middleware.SessionResolver = (*Service)(nil)
