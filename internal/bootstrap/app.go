package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"ops-backend/internal/auth"
	"ops-backend/internal/clients"
	"ops-backend/internal/experts"
	"ops-backend/internal/projects"
	sharedauth "ops-backend/internal/shared/auth"
	"ops-backend/internal/shared/config"
	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/server"
	"ops-backend/internal/shared/storage/db"
	"ops-backend/internal/shared/storage/object"
	localstore "ops-backend/internal/shared/storage/object/local"
	s3store "ops-backend/internal/shared/storage/object/s3"
	"ops-backend/internal/shared/telemetry"
	"ops-backend/internal/users"
)

// App holds the wired dependencies of the API process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Redis  *redis.Client

	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	ExpertsHandler  *experts.Handler
	ClientsHandler  *clients.Handler
	ProjectsHandler *projects.Handler
}

// Build validates cfg, connects to Postgres, applies migrations and wires the
// router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	if err := buildServices(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		DB:            sqlDB,
		Sessions:      app.AuthService,
		SessionCookie: auth.SessionCookieName,
		Auth:          app.AuthHandler,
		Users:         app.UsersHandler,
		Resources: []server.RouteRegistrar{
			app.ExpertsHandler,
			app.ClientsHandler,
			app.ProjectsHandler,
		},
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"session_store": cfg.SessionStore,
		"object_store":  cfg.ObjectStoreType,
	})
	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.MediaRoot), nil
	}
}

func buildSessions(ctx context.Context, app *App) (auth.SessionStore, error) {
	if app.Config.SessionStore != "redis" {
		return &auth.PGSessions{DB: app.DB}, nil
	}
	opts, err := redis.ParseURL(app.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	app.Redis = client
	return auth.NewRedisSessions(client), nil
}

func buildServices(ctx context.Context, app *App) error {
	sessions, err := buildSessions(ctx, app)
	if err != nil {
		return err
	}
	signer, err := sharedauth.NewSigner(app.Config.SecretKey)
	if err != nil {
		return err
	}
	app.AuthService = auth.NewService(&auth.PGAccounts{DB: app.DB}, sessions, signer, app.Config.SessionTTL)
	app.AuthHandler = auth.NewHandler(app.AuthService, app.Config.CookieSecure)

	userStore, err := crud.NewPGStore(app.DB, users.Table)
	if err != nil {
		return err
	}
	app.UsersHandler = users.NewHandler(userStore)

	expertStore, err := crud.NewPGStore(app.DB, experts.ExpertTable)
	if err != nil {
		return err
	}
	experienceStore, err := crud.NewPGStore(app.DB, experts.ExperienceTable)
	if err != nil {
		return err
	}
	app.ExpertsHandler = experts.NewHandler(expertStore, experienceStore)

	companyStore, err := crud.NewPGStore(app.DB, clients.CompanyTable)
	if err != nil {
		return err
	}
	memberStore, err := crud.NewPGStore(app.DB, clients.MemberTable)
	if err != nil {
		return err
	}
	app.ClientsHandler = clients.NewHandler(companyStore, memberStore)

	projectStores, err := projects.NewPGStores(app.DB)
	if err != nil {
		return err
	}
	app.ProjectsHandler = projects.NewHandler(projectStores, app.Store)
	return nil
}
