package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string
	Env      string // "production" turns on the Secure cookie flag

	// Upstream MakeAPI service (system of record)
	MakeAPIBaseURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Session cookie
	CookieMaxAge time.Duration

	// Identity lookups (route guard). Endpoint/item data is never cached.
	IdentityCacheTTL time.Duration

	// Registration tokens (locally minted, upstream has no register op)
	JWTSecret string

	// Observability
	OTLPEndpoint string

	// Static console assets served behind the route guard
	StaticDir string

	// Dev mode: in-memory fake store instead of the live upstream
	UseMemStore bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),

		MakeAPIBaseURL: getEnv("MAKEAPI_BASE_URL", "https://api-makeapi.netlify.app"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		CookieMaxAge: getEnvDuration("COOKIE_MAX_AGE", 7*24*time.Hour),

		IdentityCacheTTL: getEnvDuration("IDENTITY_CACHE_TTL", time.Minute),

		JWTSecret: getEnv("JWT_SECRET", "makeapi-default-dev-secret-change-me"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		StaticDir: getEnv("STATIC_DIR", "web/dist"),

		UseMemStore: getEnv("USE_MEMSTORE", "false") == "true",
	}
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
