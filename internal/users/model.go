package users

import (
	"database/sql"
	"time"

	"ops-backend/internal/shared/crud"
)

// User is a staff account. PasswordHash is never rendered.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Active       bool
	Staff        bool
	Superuser    bool
	LastLogin    *time.Time
}

// Input is the writable shape of a user.
type Input struct {
	FirstName string `json:"user_first_name" validate:"required,max=30"`
	LastName  string `json:"user_last_name" validate:"max=30"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Active    *bool  `json:"is_active"`
	Staff     *bool  `json:"is_staff"`
	Superuser *bool  `json:"is_superuser"`
}

// Table maps User onto the users table.
var Table = crud.Table[User]{
	Name:      "users",
	Key:       "user_id",
	Columns:   []string{"user_first_name", "user_last_name", "email", "password", "is_active", "is_staff", "is_superuser"},
	Generated: []string{"last_login"},
	Scan: func(s crud.Scanner) (User, error) {
		var u User
		var lastLogin sql.NullTime
		if err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Active, &u.Staff, &u.Superuser, &lastLogin); err != nil {
			return User{}, err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		return u, nil
	},
	Values: func(u User) []any {
		return []any{u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Active, u.Staff, u.Superuser}
	},
}
