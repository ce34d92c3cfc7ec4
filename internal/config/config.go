// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Session store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Session signing secret. Process-wide, loaded once, never logged.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Session lifetime
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Sign-in location unauthenticated browser requests are redirected to
	SignInPath string `env:"SIGNIN_PATH" envDefault:"/signin"`

	// Protected path rules as an ordered comma-separated list of
	// pattern=mode pairs, e.g. "/dashboard*=redirect,/api/v1/recipes*=deny".
	// Mode is "redirect" (send to sign-in) or "deny" (401).
	ProtectedPaths string `env:"PROTECTED_PATHS" envDefault:"/dashboard*=redirect,/api/v1/recipes*=deny,/api/v1/news*=deny,/api/v1/auth/logout=deny"`

	// External news provider
	NewsAPIURL string `env:"NEWS_API_URL" envDefault:"https://newsapi.org/v2"`
	NewsAPIKey string `env:"NEWS_API_KEY" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Login rate limiting (per client IP, fixed window)
	LoginRateLimitEnabled bool `env:"LOGIN_RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimitMax     int  `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"10"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// PathRule pairs a path pattern with its enforcement mode.
type PathRule struct {
	Pattern string
	Mode    string
}

// Enforcement modes for protected paths.
const (
	ModeRedirect = "redirect"
	ModeDeny     = "deny"
)

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetProtectedPathRules parses the PROTECTED_PATHS string into ordered rules.
// Malformed entries are rejected with an error rather than silently dropped.
func (c *Config) GetProtectedPathRules() ([]PathRule, error) {
	if c.ProtectedPaths == "" {
		return nil, nil
	}

	entries := strings.Split(c.ProtectedPaths, ",")
	rules := make([]PathRule, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		pattern, mode, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("protected path entry %q: missing mode", entry)
		}

		pattern = strings.TrimSpace(pattern)
		mode = strings.TrimSpace(mode)

		if pattern == "" {
			return nil, fmt.Errorf("protected path entry %q: empty pattern", entry)
		}
		if mode != ModeRedirect && mode != ModeDeny {
			return nil, fmt.Errorf("protected path entry %q: unknown mode %q", entry, mode)
		}

		rules = append(rules, PathRule{Pattern: pattern, Mode: mode})
	}

	return rules, nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
