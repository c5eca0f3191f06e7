// Package config loads application configuration from the environment.
//
// A .env file in the working directory is loaded first if present (handy for
// local development), then real environment variables take precedence as
// usual — godotenv never overrides variables that are already set.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port          int    // HTTP listen port (PORT, default 8080)
	DBPath        string // SQLite database file (DB_PATH, default data/ledger.db)
	JWTSecret     string // HMAC secret for session tokens (JWT_SECRET, required)
	AdminPassword string // bootstrap admin password (ADMIN_PASSWORD, default "admin")
	LogLevel      string // debug | info | warn | error (LOG_LEVEL, default info)
}

// Load reads configuration from .env and the environment.
//
// JWT_SECRET is the one variable with no safe default — sessions signed with
// a guessable secret are forgeable, so a missing secret is a startup error
// rather than a warning.
func Load() (*Config, error) {
	_ = godotenv.Load() // best effort; missing .env is fine

	cfg := &Config{
		Port:          8080,
		DBPath:        "data/ledger.db",
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminPassword: "admin",
		LogLevel:      "info",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, errors.New("config: PORT must be an integer")
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set (try: openssl rand -hex 32)")
	}

	return cfg, nil
}
