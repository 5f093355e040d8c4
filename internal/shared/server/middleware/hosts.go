package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/server/respond"
)

// AllowedHosts rejects requests whose Host is not listed. "*" allows any host
// and a leading dot matches the domain and its subdomains.
func AllowedHosts(hosts []string) gin.HandlerFunc {
	allowAll := false
	var exact []string
	var suffixes []string
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case h == "*":
			allowAll = true
		case strings.HasPrefix(h, "."):
			suffixes = append(suffixes, h)
		default:
			exact = append(exact, h)
		}
	}

	return func(c *gin.Context) {
		if allowAll {
			c.Next()
			return
		}
		host := strings.ToLower(c.Request.Host)
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		for _, h := range exact {
			if host == h {
				c.Next()
				return
			}
		}
		for _, s := range suffixes {
			if host == strings.TrimPrefix(s, ".") || strings.HasSuffix(host, s) {
				c.Next()
				return
			}
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid HTTP_HOST header: "+c.Request.Host, nil)
	}
}
