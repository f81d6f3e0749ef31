// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store selects the persistence backend.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// Store is "postgres" (default) or "memory". The memory store keeps
	// everything in process and is meant for demos and front-end work.
	Store string

	// DatabaseURL is the Postgres connection string. Required when Store is postgres.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs access tokens. Required.
	JWTSecret string
	// TokenTTL is the access token lifetime. Defaults to 24h.
	TokenTTL time.Duration

	// TenantID is the value expected in the tenant_id header on /auth routes.
	TenantID string

	// ImageBaseURL prefixes stored image paths in responses.
	ImageBaseURL string
	// UploadDir is where plan images are written and served from.
	UploadDir string
	// MaxBodyBytes caps request bodies. Defaults to 10 MiB.
	MaxBodyBytes int64

	// RedisAddr enables the Redis-backed booking selection. Empty keeps
	// selections in memory.
	RedisAddr     string
	RedisPassword string
	// SelectionTTL is how long an untouched selection survives.
	SelectionTTL time.Duration

	// MockLatency delays every memory-store call, to exercise loading states.
	MockLatency time.Duration

	// LoginRatePerMin limits login attempts per client IP.
	LoginRatePerMin int

	// AdminEmail and AdminPassword, when both set, bootstrap an
	// administrator account at startup if the email is not yet registered.
	AdminEmail    string
	AdminPassword string
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none
// are given) into the environment. Variables already set win, and missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set or any
// values that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Store:         strings.ToLower(getEnv("STORE", StorePostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TenantID:      getEnv("TENANT_ID", "01-santa-barbara"),
		ImageBaseURL:  strings.TrimRight(getEnv("IMAGE_BASE_URL", "http://localhost:8080"), "/"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var missing, invalid []string

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreMemory:
	default:
		invalid = append(invalid, "STORE")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil || cfg.TokenTTL <= 0 {
		invalid = append(invalid, "TOKEN_TTL")
	}
	if cfg.SelectionTTL, err = getDuration("SELECTION_TTL", 30*time.Minute); err != nil || cfg.SelectionTTL <= 0 {
		invalid = append(invalid, "SELECTION_TTL")
	}
	if cfg.MockLatency, err = getDuration("MOCK_LATENCY", 0); err != nil || cfg.MockLatency < 0 {
		invalid = append(invalid, "MOCK_LATENCY")
	}
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 10<<20); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	rate, err := getInt64("LOGIN_RATE_PER_MIN", 10)
	if err != nil || rate <= 0 {
		invalid = append(invalid, "LOGIN_RATE_PER_MIN")
	}
	cfg.LoginRatePerMin = int(rate)

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
