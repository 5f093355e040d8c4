package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"ops-backend/internal/shared/config"
	"ops-backend/internal/shared/metrics"
	"ops-backend/internal/shared/server/middleware"
	"ops-backend/internal/shared/server/respond"
)

// RouteRegistrar mounts a resource's routes, prefixing each with handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg gin.IRouter, handlers ...gin.HandlerFunc)
}

// AuthRoutes mounts the login, logout, csrf and profile endpoints.
type AuthRoutes interface {
	RegisterRoutes(rg gin.IRouter, loginLimit gin.HandlerFunc)
}

// RouterDeps holds the handlers and collaborators the API routes need.
type RouterDeps struct {
	Config   config.Config
	DB       *sql.DB
	Sessions middleware.SessionResolver
	// SessionCookie names the cookie Sessions resolves.
	SessionCookie string
	Auth          AuthRoutes
	Users         RouteRegistrar
	// Resources are mounted behind RequireAuth.
	Resources []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		otelgin.Middleware(cfg.OTel.ServiceName),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.AllowedHosts(cfg.AllowedHosts),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Session(deps.Sessions, deps.SessionCookie),
		middleware.CSRF(cfg.CSRFTrustedOrigins),
	)

	r.GET("/health", healthHandler(deps.DB))
	r.GET("/metrics", metrics.Handler())

	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(r, middleware.RateLimit(middleware.PerMinute(cfg.LoginRatePerMin), nil))
	}

	if deps.Users != nil {
		deps.Users.RegisterRoutes(r, middleware.RequireAuth(), middleware.RequireStaff())
	}
	for _, res := range deps.Resources {
		res.RegisterRoutes(r, middleware.RequireAuth())
	}

	return r
}

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			respond.Error(c, http.StatusServiceUnavailable, "unavailable", "database unreachable", nil)
			return
		}
		respond.OK(c, gin.H{"ok": true})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
