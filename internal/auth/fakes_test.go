package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	sharedauth "ops-backend/internal/shared/auth"
)

type fakeAccounts struct {
	byID map[int64]Account
}

func newFakeAccounts(t interface{ Fatalf(string, ...any) }, accounts ...Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[int64]Account{}}
	for _, a := range accounts {
		if a.PasswordHash == "" {
			hash, err := sharedauth.HashPassword("correct-horse")
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			a.PasswordHash = hash
		}
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) ByEmail(_ context.Context, email string) (Account, error) {
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (f *fakeAccounts) ByID(_ context.Context, id int64) (Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) TouchLastLogin(context.Context, int64, time.Time) error { return nil }

type memorySessions struct {
	mu   sync.Mutex
	rows map[string]Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{rows: map[string]Session{}}
}

func (m *memorySessions) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.Key] = s
	return nil
}

func (m *memorySessions) Get(_ context.Context, key string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[key]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessions) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, key)
	return nil
}

func (m *memorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
