package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/metrics"
	"ops-backend/internal/shared/server/middleware"
	"ops-backend/internal/shared/server/respond"
	"ops-backend/internal/shared/telemetry"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "sessionid"

const csrfCookieMaxAge = 365 * 24 * 60 * 60

// Handler serves the login, logout, csrf and profile endpoints.
type Handler struct {
	Svc          *Service
	SecureCookie bool
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{Svc: svc, SecureCookie: secureCookie}
}

// RegisterRoutes attaches the auth routes under /api. loginLimit throttles
// the login endpoint.
func (h *Handler) RegisterRoutes(rg gin.IRouter, loginLimit gin.HandlerFunc) {
	api := rg.Group("/api")
	if loginLimit != nil {
		api.POST("/login/", loginLimit, h.login)
	} else {
		api.POST("/login/", h.login)
	}
	api.POST("/logout/", h.logout)
	api.GET("/csrf/", h.csrf)
	api.GET("/profile/", middleware.RequireAuth(), h.profile)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	if req.Email == "" || req.Password == "" {
		metrics.ObserveLogin("invalid_request")
		respond.Error(c, http.StatusBadRequest, "validation_error", "Email and password are required.", nil)
		return
	}
	if req.Next == "" {
		req.Next = "/"
	}

	acc, token, expiresAt, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.ObserveLogin("rejected")
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid email or password.", nil)
			return
		}
		metrics.ObserveLogin("error")
		telemetry.ErrorContext(c.Request.Context(), "auth.login_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.", nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", h.SecureCookie, true)
	if csrfToken, err := middleware.NewCSRFToken(); err == nil {
		c.SetCookie(middleware.CSRFCookieName, csrfToken, csrfCookieMaxAge, "/", "", h.SecureCookie, false)
	}
	metrics.ObserveLogin("success")
	telemetry.InfoContext(c.Request.Context(), "auth.login", map[string]any{"user_id": acc.ID})

	respond.OK(c, gin.H{
		"message":  "Login successful",
		"next":     req.Next,
		"is_staff": acc.Staff,
	})
}

func (h *Handler) logout(c *gin.Context) {
	cookie, _ := c.Cookie(SessionCookieName)
	if err := h.Svc.Logout(c.Request.Context(), cookie); err != nil {
		telemetry.ErrorContext(c.Request.Context(), "auth.logout_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.", nil)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.SecureCookie, true)
	respond.OK(c, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) csrf(c *gin.Context) {
	token, err := c.Cookie(middleware.CSRFCookieName)
	if err != nil || token == "" {
		if token, err = middleware.NewCSRFToken(); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.", nil)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CSRFCookieName, token, csrfCookieMaxAge, "/", "", h.SecureCookie, false)
	respond.OK(c, gin.H{"message": "CSRF cookie set"})
}

func (h *Handler) profile(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	acc, err := h.Svc.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.", nil)
		return
	}
	respond.OK(c, gin.H{
		"user_id":         acc.ID,
		"user_first_name": acc.FirstName,
		"user_last_name":  acc.LastName,
		"email":           acc.Email,
		"is_staff":        acc.Staff,
		"is_superuser":    acc.Superuser,
	})
}
