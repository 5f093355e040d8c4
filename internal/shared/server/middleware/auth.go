package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	identityKey = "identity"
)

// Identity is the authenticated principal of a request.
type Identity struct {
	UserID    int64
	SessionID string
	Staff     bool
}

// SessionResolver turns a session cookie value into an Identity.
type SessionResolver interface {
	Resolve(ctx context.Context, cookie string) (Identity, error)
}

// Session resolves the session cookie when present. Requests without a valid
// session continue anonymously; RequireAuth decides whether that is allowed.
func Session(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" || resolver == nil {
			c.Next()
			return
		}
		id, err := resolver.Resolve(c.Request.Context(), raw)
		if err != nil {
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Set(userIDKey, strconv.FormatInt(id.UserID, 10))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided.", nil)
			return
		}
		c.Next()
	}
}

// RequireStaff rejects authenticated non-staff users with 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided.", nil)
			return
		}
		if !id.Staff {
			respond.Error(c, http.StatusForbidden, "forbidden", "You do not have permission to perform this action.", nil)
			return
		}
		c.Next()
	}
}

// IdentityFromContext returns the identity set by Session.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// UserIDFromContext fetches the user ID set by Session, as a string.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
