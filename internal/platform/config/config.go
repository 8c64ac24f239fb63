// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/personae/pkg/query"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Personae API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageDriver selects the persistence backend ("postgres" or "memory").
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL). Required when StorageDriver is postgres.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath overrides the embedded SQL migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value Cache (Redis). Optional; in-memory fallbacks are used when empty.
	RedisURL string `env:"REDIS_URL"`

	// Admin identity. The admin API is mounted only when both key paths are set.
	JWTPrivKeyPath    string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath     string `env:"JWT_PUBLIC_KEY_PATH"`
	AdminUsername     string `env:"ADMIN_USERNAME"      envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// Cross-Origin Resource Sharing (comma-separated origin suffixes)
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Comment listing
	CommentPageMaxLimit int `env:"COMMENT_PAGE_MAX_LIMIT" envDefault:"50"`

	// Voting
	VoteValueMaxLength int           `env:"VOTE_VALUE_MAX_LENGTH" envDefault:"32"`
	VoteRateLimit      int           `env:"VOTE_RATE_LIMIT"       envDefault:"30"`
	VoteRateWindow     time.Duration `env:"VOTE_RATE_WINDOW"      envDefault:"1m"`

	// Admin login lockout
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginLockoutWindow time.Duration `env:"LOGIN_LOCKOUT_WINDOW" envDefault:"15m"`

	// Statistics cache
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"30s"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.CommentPageMaxLimit < 1 {
		errs = append(errs, errors.New("COMMENT_PAGE_MAX_LIMIT must be positive"))
	}
	if c.VoteValueMaxLength < 1 {
		errs = append(errs, errors.New("VOTE_VALUE_MAX_LENGTH must be positive"))
	}
	if c.VoteRateLimit < 1 || c.VoteRateWindow <= 0 {
		errs = append(errs, errors.New("VOTE_RATE_LIMIT and VOTE_RATE_WINDOW must be positive"))
	}
	if c.LoginMaxAttempts < 1 || c.LoginLockoutWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS and LOGIN_LOCKOUT_WINDOW must be positive"))
	}
	if (c.JWTPrivKeyPath == "") != (c.JWTPubKeyPath == "") {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether persistence is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.StorageDriver == StoragePostgres
}

// UsesRedis reports whether a Redis URL was provided.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

// AdminEnabled reports whether the admin surface can be mounted.
func (c *Config) AdminEnabled() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}

// AllowedOrigins returns the origin suffixes accepted by CORS outside development.
func (c *Config) AllowedOrigins() []string {
	return append([]string{"personae.app"}, query.List(c.ExtraOrigins)...)
}
