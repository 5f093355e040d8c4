package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/server/respond"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// CSRF enforces the double-submit token on unsafe methods of authenticated
// requests. A present Origin header must be one of trustedOrigins.
func CSRF(trustedOrigins []string) gin.HandlerFunc {
	trusted := make(map[string]struct{}, len(trustedOrigins))
	for _, o := range trustedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			trusted[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			c.Next()
			return
		}
		if _, ok := IdentityFromContext(c); !ok {
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := trusted[strings.TrimRight(origin, "/")]; !ok {
				respond.Error(c, http.StatusForbidden, "csrf_failed", "CSRF Failed: Origin checking failed - "+origin+" does not match any trusted origins.", nil)
				return
			}
		}

		cookie, err := c.Cookie(CSRFCookieName)
		if err != nil || cookie == "" {
			respond.Error(c, http.StatusForbidden, "csrf_failed", "CSRF Failed: CSRF cookie not set.", nil)
			return
		}
		header := c.GetHeader(CSRFHeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			respond.Error(c, http.StatusForbidden, "csrf_failed", "CSRF Failed: CSRF token missing or incorrect.", nil)
			return
		}
		c.Next()
	}
}

// NewCSRFToken returns a random token for the csrftoken cookie.
func NewCSRFToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
