// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap opens the backends selected by configuration.

Both cmd/api and cmd/mangactl build their object graph from [Open] so the
server and the operator CLI always talk to the same stores.
*/
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/taibuivan/mimanga/internal/api"
	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/config"
	"github.com/taibuivan/mimanga/internal/platform/constants"
	"github.com/taibuivan/mimanga/internal/platform/gcp"
	"github.com/taibuivan/mimanga/internal/platform/migration"
	pgstore "github.com/taibuivan/mimanga/internal/platform/postgres"
	redisstore "github.com/taibuivan/mimanga/internal/platform/redis"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/internal/platform/sqlite"
	"github.com/taibuivan/mimanga/internal/users/auth"
)

// Resources is the opened backend graph.
type Resources struct {
	// Catalog is the manga store selected by STORE_DRIVER.
	Catalog manga.Repository
	// Users is the account store. It follows the catalog driver; sqlite and memory use memory.
	Users auth.UserRepository
	// Locker serializes generation runs, across instances when redis is configured.
	Locker generator.Locker
	// Tokens signs and verifies access tokens. Nil when authentication is disabled.
	Tokens *sec.TokenService
	// Checks feed the /ready probe.
	Checks []api.HealthCheck

	closers []func()
}

/*
Open connects every backend the configuration asks for.

Description: Postgres migrations run before the repository is created.
On failure everything opened so far is closed again.
*/
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resources, error) {
	resources := &Resources{}

	if err := resources.openStore(ctx, cfg, logger); err != nil {
		resources.Close()
		return nil, err
	}

	// ── Generation lock ───────────────────────────────────────────────────
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			resources.Close()
			return nil, err
		}
		resources.onClose(func() { _ = client.Close() })
		resources.Locker = generator.NewRedisLocker(client, constants.RedisKeyGenerationLock, cfg.GenerationLockTTL, logger)
		resources.Checks = append(resources.Checks, api.HealthCheck{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, client) },
		})
	} else {
		resources.Locker = &generator.LocalLocker{}
	}

	// ── Token service ─────────────────────────────────────────────────────
	if cfg.AuthEnabled() {
		tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
		if err != nil {
			resources.Close()
			return nil, err
		}
		resources.Tokens = tokens
	}

	return resources, nil
}

func (resources *Resources) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			return err
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, pgstore.Options{}, logger)
		if err != nil {
			return err
		}
		resources.onClose(pool.Close)
		resources.Catalog = manga.NewPostgresRepository(pool, manga.DefaultBatchLimit)
		resources.Users = auth.NewPostgresUserRepository(pool)
		resources.Checks = append(resources.Checks, api.HealthCheck{
			Name:  "postgres",
			Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		})

	case config.DriverFirestore:
		client, err := gcp.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile, logger)
		if err != nil {
			return err
		}
		resources.onClose(func() { _ = client.Close() })
		resources.Catalog = manga.NewFirestoreRepository(client, cfg.FirestoreCollection, manga.DefaultBatchLimit)
		resources.Users = auth.NewFirestoreUserRepository(client, cfg.FirestoreUsersCollection)
		resources.Checks = append(resources.Checks, api.HealthCheck{
			Name:  "firestore",
			Probe: func(ctx context.Context) error { return gcp.PingFirestore(ctx, client, cfg.FirestoreCollection) },
		})

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		resources.onClose(func() { _ = db.Close() })
		repository, err := manga.NewSQLiteRepository(ctx, db, manga.DefaultBatchLimit)
		if err != nil {
			return err
		}
		resources.Catalog = repository
		resources.Users = auth.NewMemoryUserRepository()
		resources.Checks = append(resources.Checks, api.HealthCheck{Name: "sqlite", Probe: db.PingContext})

	case config.DriverMemory:
		resources.Catalog = manga.NewMemoryRepository(manga.DefaultBatchLimit)
		resources.Users = auth.NewMemoryUserRepository()

	default:
		return fmt.Errorf("bootstrap: unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("catalog_store_opened", slog.String("driver", cfg.StoreDriver))
	return nil
}

// Generator builds the bulk generator over the opened catalog.
func (resources *Resources) Generator(cfg *config.Config, logger *slog.Logger) *generator.Generator {
	return generator.New(
		resources.Catalog,
		generator.NewFakerSynthesizer(cfg.GenerationSeed),
		resources.Locker,
		generator.Config{BatchSize: cfg.GenerationBatchSize, AttemptMultiplier: cfg.GenerationAttemptMultiplier},
		logger,
	)
}

// OpenStorage creates a Cloud Storage client owned by resources.
func (resources *Resources) OpenStorage(ctx context.Context, cfg *config.Config) (*storage.Client, error) {
	client, err := gcp.NewStorageClient(ctx, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, err
	}
	resources.onClose(func() { _ = client.Close() })
	return client, nil
}

func (resources *Resources) onClose(closer func()) {
	resources.closers = append(resources.closers, closer)
}

// Close releases backends in reverse opening order.
func (resources *Resources) Close() {
	for i := len(resources.closers) - 1; i >= 0; i-- {
		resources.closers[i]()
	}
	resources.closers = nil
}
