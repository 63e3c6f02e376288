package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	// Event fan-out. Targets are fixed at startup; an empty list disables
	// publishing entirely.
	EventSource  string
	EventTargets []string
	EventTimeout time.Duration

	RateLimitGlobal  time.Duration
	RateLimitPost    time.Duration
	RateLimitComment time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		EventSource:  getEnv("EVENT_SOURCE", "bookcircle-feed"),
		EventTargets: splitTargets(os.Getenv("EVENT_TARGETS")),
	}

	var err error
	cfg.EventTimeout, err = time.ParseDuration(getEnv("EVENT_TIMEOUT", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_TIMEOUT: %w", err)
	}
	cfg.RateLimitGlobal, err = time.ParseDuration(getEnv("RATE_LIMIT_GLOBAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}
	cfg.RateLimitPost, err = time.ParseDuration(getEnv("RATE_LIMIT_POST", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}
	cfg.RateLimitComment, err = time.ParseDuration(getEnv("RATE_LIMIT_COMMENT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}

	return cfg, nil
}

// splitTargets parses the comma-separated EVENT_TARGETS value, dropping
// empty entries so trailing commas are harmless.
func splitTargets(raw string) []string {
	if raw == "" {
		return nil
	}
	var targets []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
