// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the MiManga HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the catalog store, the generation lock and the token service.
//  4. Wire HTTP handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/mimanga/internal/api"
	"github.com/taibuivan/mimanga/internal/bootstrap"
	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/config"
	"github.com/taibuivan/mimanga/internal/platform/constants"
	"github.com/taibuivan/mimanga/internal/platform/middleware"
	"github.com/taibuivan/mimanga/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
		slog.Bool("auth_enabled", cfg.AuthEnabled()),
	)

	// Root context cancelled on shutdown. It stops background sweepers.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. Backends ───────────────────────────────────────────────────────
	startupCtx, startupCancel := context.WithTimeout(rootCtx, constants.StartupTimeout)
	resources, err := bootstrap.Open(startupCtx, cfg, log)
	startupCancel()
	must(log, err, "open backends")
	defer func() {
		log.Info("closing_backends")
		resources.Close()
	}()

	// ── 4. Domain Wiring ──────────────────────────────────────────────────
	catalog := manga.NewService(resources.Catalog, log)
	gen := resources.Generator(cfg, log)

	liveness, readiness := api.NewHealthHandlers(resources.Checks, log)
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Mangas:    manga.NewHandler(catalog, cfg.AuthEnabled()),
		Generator: generator.NewHandler(gen, catalog, cfg.GenerationMaxCount, cfg.AuthEnabled()),
	}

	// A nil *TokenService must not reach the interface as a typed nil.
	var verifier middleware.TokenVerifier
	if resources.Tokens != nil {
		verifier = resources.Tokens
		authService := auth.NewService(resources.Users, resources.Tokens, cfg.AdminEmails, log)
		handlers.Auth = auth.NewHandler(authService)
	}

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
