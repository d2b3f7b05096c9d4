/*
config.go - environment-driven configuration

PURPOSE:
  Loads runtime settings from the process environment, with an optional .env
  file for local development. Every value has a working default except the
  JWT secret, which must be set outside development.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	JWT   JWTConfig
	Admin AdminConfig
	CORS  CORSConfig
}

type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DBConfig struct {
	Path string
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig controls the bootstrap admin account.
type AdminConfig struct {
	Password string
}

type CORSConfig struct {
	Origins []string
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	tokenExpiration, err := time.ParseDuration(getEnv("TOKEN_EXPIRATION", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRATION: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Port:     appPort,
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "ausencias.db"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: tokenExpiration,
		},
		Admin: AdminConfig{
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		CORS: CORSConfig{
			Origins: getEnvSlice("CORS_ORIGINS", "*"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate rejects configurations that would run insecurely outside
// development.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.App.Env != "development" {
			return fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", c.App.Env)
		}
		c.JWT.Secret = "dev-only-insecure-secret"
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("TOKEN_EXPIRATION must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
