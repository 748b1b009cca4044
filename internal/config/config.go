// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Queue    QueueConfig
	Log      LogConfig

	// FrontendBaseURL is the customer-facing origin QR codes point at.
	FrontendBaseURL string

	// AllowedOrigins is the CORS allow-list.
	AllowedOrigins []string
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	URL string

	// MigrationsURL is the golang-migrate source, e.g. file://migrations.
	MigrationsURL string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type QueueConfig struct {
	// DailyReset restarts ticket numbering each calendar day.
	DailyReset bool

	// Timezone decides where the day boundary falls.
	Timezone string

	// AllocMaxRetries bounds retries on ticket-number collisions.
	AllocMaxRetries int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MigrationsURL: getEnv("MIGRATIONS_URL", "file://migrations"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Queue: QueueConfig{
			DailyReset:      getEnvBool("QUEUE_DAILY_RESET", true),
			Timezone:        getEnv("QUEUE_TIMEZONE", "UTC"),
			AllocMaxRetries: getEnvInt("QUEUE_ALLOC_MAX_RETRIES", 5),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		AllowedOrigins:  splitEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
