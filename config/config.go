package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config contains runtime configuration values.
type Config struct {
	Environment      string
	HTTPPort         string
	DatabaseURL      string
	JWTSecret        string
	TokenIssuer      string
	TokenAudience    string
	TokenTTL         time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// Missing signing key or database connection is fatal: the service cannot
// authenticate anyone without them.
func Load() (Config, error) {
	cfg := Config{
		Environment:      getEnv("APP_ENV", "development"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenIssuer:      getEnv("TOKEN_ISSUER", "supplierapi"),
		TokenAudience:    getEnv("TOKEN_AUDIENCE", "supplierapi"),
		TokenTTL:         getDuration("TOKEN_TTL", time.Hour),
		LockoutThreshold: getInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:  getDuration("LOCKOUT_DURATION", 15*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
