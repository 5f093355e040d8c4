package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/auth"
	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/validate"
)

type Handler struct {
	Users *crud.Resource[User, Input]
}

func NewHandler(store crud.Store[User]) *Handler {
	return &Handler{Users: &crud.Resource[User, Input]{
		Name:      "user",
		Path:      "/users",
		Store:     store,
		FromModel: fromModel,
		ToModel:   toModel,
		Present:   present,
		Check:     check,
	}}
}

// RegisterRoutes mounts /users/ behind handlers (auth and staff gates).
func (h *Handler) RegisterRoutes(rg gin.IRouter, handlers ...gin.HandlerFunc) {
	h.Users.Register(rg, handlers...)
}

func fromModel(u User) Input {
	active, staff, superuser := u.Active, u.Staff, u.Superuser
	return Input{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Active:    &active,
		Staff:     &staff,
		Superuser: &superuser,
	}
}

func check(_ context.Context, in *Input, existing *User) validate.Errors {
	if existing == nil && in.Password == "" {
		return validate.Errors{"password": "This field is required."}
	}
	return nil
}

// toModel hashes a supplied password and keeps the stored hash otherwise.
func toModel(_ context.Context, in Input, existing *User) (User, error) {
	u := User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     NormalizeEmail(in.Email),
		Active:    boolOr(in.Active, true),
		Staff:     boolOr(in.Staff, false),
		Superuser: boolOr(in.Superuser, false),
	}
	if existing != nil {
		u.PasswordHash = existing.PasswordHash
		u.LastLogin = existing.LastLogin
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return u, nil
}

func present(u User) any {
	return gin.H{
		"user_id":         u.ID,
		"user_first_name": u.FirstName,
		"user_last_name":  u.LastName,
		"email":           u.Email,
		"is_active":       u.Active,
		"is_staff":        u.Staff,
		"is_superuser":    u.Superuser,
		"last_login":      u.LastLogin,
	}
}

// NormalizeEmail lowercases the domain part, leaving the local part as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
