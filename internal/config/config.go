package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string

	// Upstream invoice API
	UpstreamURL string

	// Database settings (upload history; optional)
	DatabaseURL string

	// Redis settings (edit sessions and schema cache)
	RedisURL string

	// Security settings
	JWTSecret string

	// Session lifetimes
	EditSessionTTL time.Duration
	SchemaCacheTTL time.Duration

	// Batch upload policy
	UploadBatchSize  int
	UploadBatchDelay time.Duration
	UploadRetryDelay time.Duration
	UploadMaxRetries int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		UpstreamURL:      getEnv("UPSTREAM_URL", "http://localhost:8000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		EditSessionTTL:   getEnvDuration("EDIT_SESSION_TTL", 2*time.Hour),
		SchemaCacheTTL:   getEnvDuration("SCHEMA_CACHE_TTL", 12*time.Hour),
		UploadBatchSize:  getEnvInt("UPLOAD_BATCH_SIZE", 10),
		UploadBatchDelay: getEnvDuration("UPLOAD_BATCH_DELAY", 2*time.Second),
		UploadRetryDelay: getEnvDuration("UPLOAD_RETRY_DELAY", 5*time.Second),
		UploadMaxRetries: getEnvInt("UPLOAD_MAX_RETRIES", 3),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}

	// Validate required settings
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable value or default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
