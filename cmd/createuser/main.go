package main

// Create a staff account:
//   CREATEUSER_PASSWORD=... go run ./cmd/createuser -email ops@example.com -first Ops -superuser

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	sharedauth "ops-backend/internal/shared/auth"
	"ops-backend/internal/shared/config"
	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/storage/db"
	"ops-backend/internal/users"
)

type options struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Superuser bool
}

func main() {
	cfg := config.Load()

	var opts options
	flag.StringVar(&opts.Email, "email", "", "Email address (required)")
	flag.StringVar(&opts.FirstName, "first", "", "First name (required)")
	flag.StringVar(&opts.LastName, "last", "", "Last name")
	flag.StringVar(&opts.Password, "password", os.Getenv("CREATEUSER_PASSWORD"), "Password (defaults to CREATEUSER_PASSWORD)")
	flag.BoolVar(&opts.Superuser, "superuser", false, "Grant superuser")
	flag.Parse()

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		exitErr(fmt.Sprintf("connect database: %v", err))
	}
	defer sqlDB.Close()

	store, err := crud.NewPGStore(sqlDB, users.Table)
	if err != nil {
		exitErr(err.Error())
	}
	u, err := createUser(ctx, store, opts)
	if err != nil {
		exitErr(err.Error())
	}
	fmt.Printf("created user %d <%s>\n", u.ID, u.Email)
}

func createUser(ctx context.Context, store crud.Store[users.User], opts options) (users.User, error) {
	email := users.NormalizeEmail(opts.Email)
	if email == "" || strings.TrimSpace(opts.FirstName) == "" {
		return users.User{}, errors.New("email and first name are required")
	}
	if len(opts.Password) < 8 {
		return users.User{}, errors.New("password must have at least 8 characters")
	}
	hash, err := sharedauth.HashPassword(opts.Password)
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := store.Create(ctx, users.User{
		FirstName:    strings.TrimSpace(opts.FirstName),
		LastName:     strings.TrimSpace(opts.LastName),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Staff:        true,
		Superuser:    opts.Superuser,
	})
	if err != nil {
		return users.User{}, fmt.Errorf("create user: %w", db.Classify(err))
	}
	return created, nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
