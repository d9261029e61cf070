// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the server configuration from HCMS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-headless/internal/auth"
)

// knownWeakPasswords are example values that must never seed an admin.
var knownWeakPasswords = []string{
	"changeme",
	"password",
	"admin123",
}

var (
	validDrivers   = []string{"mysql", "postgres", "postgresql", "pgx", "sqlite", "sqlite3"}
	validEnvs      = []string{"development", "production"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"HCMS_DB_DRIVER" envDefault:"sqlite"`
	DBDSN      string `env:"HCMS_DB_DSN" envDefault:"./data/hcms.db"`
	ServerHost string `env:"HCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"HCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"HCMS_ENV" envDefault:"development"`

	// Logging
	LogLevel      string `env:"HCMS_LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"HCMS_LOG_FILE"`                         // Optional rotating log file
	LogMaxSizeMB  int    `env:"HCMS_LOG_MAX_SIZE_MB" envDefault:"100"` // Rotate after this size
	LogMaxBackups int    `env:"HCMS_LOG_MAX_BACKUPS" envDefault:"5"`   // Rotated files kept
	LogMaxAgeDays int    `env:"HCMS_LOG_MAX_AGE_DAYS" envDefault:"30"` // Days rotated files are kept

	// Sessions
	RedisURL        string        `env:"HCMS_REDIS_URL"` // Optional Redis session store
	RedisPrefix     string        `env:"HCMS_REDIS_PREFIX" envDefault:"hcms:session:"`
	SessionLifetime time.Duration `env:"HCMS_SESSION_LIFETIME" envDefault:"24h"`

	// HTTP
	CORSOrigins    []string      `env:"HCMS_CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RequestTimeout time.Duration `env:"HCMS_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimit      float64       `env:"HCMS_API_RATE_LIMIT" envDefault:"20"` // Requests per second per IP
	RateBurst      int           `env:"HCMS_API_RATE_BURST" envDefault:"40"`
	DevDelay       time.Duration `env:"HCMS_DEV_DELAY"` // Artificial response delay, development only

	// Content
	SanitizeHTML bool `env:"HCMS_SANITIZE_HTML" envDefault:"false"`

	// Seeding: creates the first admin when the users table is empty.
	AdminUsername string `env:"HCMS_ADMIN_USERNAME"`
	AdminPassword string `env:"HCMS_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions are kept in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// SeedAdmin returns true if an admin account should be seeded.
func (c Config) SeedAdmin() bool {
	return c.AdminUsername != ""
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(c.DBDriver)
	if !slices.Contains(validDrivers, c.DBDriver) {
		return fmt.Errorf("HCMS_DB_DRIVER must be one of %s, got %q", strings.Join(validDrivers, ", "), c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("HCMS_DB_DSN must not be empty")
	}
	if !slices.Contains(validEnvs, c.Env) {
		return fmt.Errorf("HCMS_ENV must be one of %s, got %q", strings.Join(validEnvs, ", "), c.Env)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("HCMS_LOG_LEVEL must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel)
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("HCMS_SESSION_LIFETIME must be positive, got %s", c.SessionLifetime)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HCMS_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	if c.DevDelay > 0 && !c.IsDevelopment() {
		slog.Warn("HCMS_DEV_DELAY is ignored outside development", "delay", c.DevDelay)
		c.DevDelay = 0
	}

	if c.SeedAdmin() {
		if err := auth.ValidateUsername(c.AdminUsername); err != nil {
			return fmt.Errorf("HCMS_ADMIN_USERNAME: %w", err)
		}
		if err := auth.ValidatePassword(c.AdminPassword); err != nil {
			return fmt.Errorf("HCMS_ADMIN_PASSWORD: %w", err)
		}
		if slices.Contains(knownWeakPasswords, c.AdminPassword) && !c.IsDevelopment() {
			return errors.New("HCMS_ADMIN_PASSWORD is a known default value and must not be used in production")
		}
		if !hasMinimumEntropy(c.AdminPassword) {
			slog.Warn("HCMS_ADMIN_PASSWORD has low character diversity; " +
				"consider generating a random password with: openssl rand -base64 18")
		}
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
