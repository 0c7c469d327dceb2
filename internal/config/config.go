package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName        string
	AppEnv         string
	AppURL         string
	Port           string
	AllowedOrigins []string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret     string
	SessionExpiry time.Duration

	// External identity provider (Firebase project)
	IdentityProjectID       string
	IdentityAllowUnverified bool // dev-only fallback: decode bearer tokens without signature check

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:        envString("APP_NAME", "Dwellist"),
		AppEnv:         envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:         envString("APP_URL", "http://localhost:3000"),
		Port:           envString("PORT", "3000"),
		AllowedOrigins: splitList(envString("ALLOWED_ORIGINS", "http://localhost:5173")),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/dwellist.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:     envRequired("JWT_SECRET"),
		SessionExpiry: envDuration("SESSION_EXPIRY", 24*time.Hour),

		// External identity provider
		IdentityProjectID:       envString("IDENTITY_PROJECT_ID", ""),
		IdentityAllowUnverified: envBool("IDENTITY_ALLOW_UNVERIFIED", false),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for image uploads)
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", "dwellist"),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses configurations that are only acceptable in
// local development.
func validateProduction(cfg *Config) {
	if cfg.IdentityAllowUnverified {
		slog.Error("IDENTITY_ALLOW_UNVERIFIED must not be enabled in production",
			"hint", "set IDENTITY_PROJECT_ID so bearer tokens are verified against provider keys")
		os.Exit(1)
	}
	if cfg.IdentityProjectID == "" {
		slog.Error("production deployment requires IDENTITY_PROJECT_ID")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
