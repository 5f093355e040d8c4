package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	Debug              bool
	SecretKey          string
	AllowedHosts       []string
	CORSAllowOrigin    []string
	CSRFTrustedOrigins []string
	DatabaseURL        string
	SessionStore       string
	RedisURL           string
	SessionTTL         time.Duration
	CookieSecure       bool
	ObjectStoreType    string
	MediaRoot          string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	LoginRatePerMin    float64
	OTel               OTelConfig
}

// OTelConfig configures OTLP export of traces and logs.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Enabled reports whether an OTLP endpoint is configured.
func (c OTelConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

const devSecretKey = "insecure-dev-secret-key"

// Validate reports configuration that would prevent the API from serving.
func (c Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL (or DB_NAME) is required")
	}
	if c.SecretKey == "" || (c.IsProduction() && c.SecretKey == devSecretKey) {
		problems = append(problems, "SECRET_KEY is required")
	}
	if c.ObjectStoreType == "s3" && (c.S3Bucket == "" || c.AWSRegion == "") {
		problems = append(problems, "S3_BUCKET and AWS_REGION are required when OBJECT_STORE=s3")
	}
	if c.LoginRatePerMin <= 0 {
		problems = append(problems, "LOGIN_RATE_PER_MIN must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	if normalizeEnv(os.Getenv("ENV")) != "production" {
		// Best-effort load of local env files for dev convenience.
		for _, path := range []string{".env", "cmd/.env"} {
			_ = godotenv.Load(path)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := databaseURL()
	secret := os.Getenv("SECRET_KEY")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if env == "production" && secret == "" {
		log.Printf("SECRET_KEY is required in production")
	}
	if env != "production" && secret == "" {
		secret = devSecretKey
	}

	return Config{
		Port:               getEnv("PORT", "8000"),
		Env:                env,
		Debug:              getBool("DEBUG", false),
		SecretKey:          secret,
		AllowedHosts:       splitAndTrim(getEnv("ALLOWED_HOSTS", "localhost,127.0.0.1")),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		CSRFTrustedOrigins: splitAndTrim(getEnv("CSRF_TRUSTED_ORIGINS", "http://127.0.0.1:8000,http://localhost:3000")),
		DatabaseURL:        dbURL,
		SessionStore:       normalizeSessionStore(getEnv("SESSION_STORE", "db")),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:         getDuration("SESSION_TTL", 14*24*time.Hour),
		CookieSecure:       getBool("COOKIE_SECURE", env == "production"),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		MediaRoot:          getEnv("MEDIA_ROOT", "./media"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		LoginRatePerMin:    getFloat("LOGIN_RATE_PER_MIN", 10),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "ops-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from DB_* parts.
func databaseURL() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	name := strings.TrimSpace(os.Getenv("DB_NAME"))
	if name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:   fmt.Sprintf("%s:%s", getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432")),
		Path:   "/" + name,
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(mode)
	}
	return u.String()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return def
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid number %q, using %v", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "db"
	}
}
