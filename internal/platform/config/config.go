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

Every backend-specific setting is optional. [Config.Validate] checks that the
settings required by the selected [Config.StoreDriver] are present.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Store Drivers

const (
	DriverMemory    = "memory"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverSQLite    = "sqlite"
)

// MaxGenerationBatchSize is the largest sub-batch any store commits at once.
const MaxGenerationBatchSize = 500

// # Configuration Schema

// Config holds all runtime configuration for the MiManga catalog server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the catalog backend: memory, postgres, firestore or sqlite.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Embedded database (SQLite)
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/mimanga.db"`

	// Document store (Firestore)
	FirestoreProjectID       string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `env:"FIRESTORE_CREDENTIALS_FILE"`
	FirestoreCollection      string `env:"FIRESTORE_COLLECTION" envDefault:"mangas"`
	FirestoreUsersCollection string `env:"FIRESTORE_USERS_COLLECTION" envDefault:"users"`

	// Key-Value store (Redis). Enables the cross-instance generation lock.
	RedisURL string `env:"REDIS_URL"`

	// Cryptographic keys for identity signing. Authentication is disabled when unset.
	JWTPrivKeyPath string   `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string   `env:"JWT_PUBLIC_KEY_PATH"`
	AdminEmails    []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Bulk generation
	GenerationBatchSize         int           `env:"GENERATION_BATCH_SIZE"         envDefault:"500"`
	GenerationAttemptMultiplier int           `env:"GENERATION_ATTEMPT_MULTIPLIER" envDefault:"2"`
	GenerationMaxCount          int           `env:"GENERATION_MAX_COUNT"          envDefault:"10000"`
	GenerationLockTTL           time.Duration `env:"GENERATION_LOCK_TTL"           envDefault:"10m"`
	GenerationSeed              uint64        `env:"GENERATION_SEED"               envDefault:"0"`

	// Catalog export (Google Cloud Storage)
	ExportBucket string `env:"EXPORT_BUCKET"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverFirestore:
		if c.FirestoreProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required for the firestore driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if (c.JWTPrivKeyPath == "") != (c.JWTPubKeyPath == "") {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together"))
	}

	if c.GenerationBatchSize < 1 || c.GenerationBatchSize > MaxGenerationBatchSize {
		errs = append(errs, fmt.Errorf("GENERATION_BATCH_SIZE must be between 1 and %d", MaxGenerationBatchSize))
	}
	if c.GenerationAttemptMultiplier < 1 {
		errs = append(errs, errors.New("GENERATION_ATTEMPT_MULTIPLIER must be positive"))
	}
	if c.GenerationMaxCount < 1 {
		errs = append(errs, errors.New("GENERATION_MAX_COUNT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// AuthEnabled reports whether token signing keys are configured.
func (c *Config) AuthEnabled() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
