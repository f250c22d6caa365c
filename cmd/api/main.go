// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Command api is the entry point for the Clinicore HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Schedule the reset-token purge job.
//  8. Start HTTP server with graceful shutdown.
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
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clinicore/clinicore/internal/admin"
	"github.com/clinicore/clinicore/internal/api"
	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/auth"
	"github.com/clinicore/clinicore/internal/patient"
	"github.com/clinicore/clinicore/internal/platform/config"
	"github.com/clinicore/clinicore/internal/platform/constants"
	"github.com/clinicore/clinicore/internal/platform/metrics"
	"github.com/clinicore/clinicore/internal/platform/migration"
	pgstore "github.com/clinicore/clinicore/internal/platform/postgres"
	redisstore "github.com/clinicore/clinicore/internal/platform/redis"
	"github.com/clinicore/clinicore/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Clinicore] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")

		// Debug verbosity in production is almost always a misconfiguration.
		if cfg.IsProduction() {
			log.Warn("debug_logging_enabled_in_production")
		}
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Long-lived context for background components (rate limiter cleanup).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Instrumentation ─────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.AccessTokenTTL)
	must(log, err, "initialize jwt service")

	collector := metrics.New()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	eventRepository := audit.NewEventRepository(pool)
	recorder := audit.NewRecorder(eventRepository, log, collector)

	identityRepository := auth.NewIdentityRepository(pool)
	roleRepository := auth.NewRoleRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(pool)
	authService := auth.NewService(
		identityRepository,
		roleRepository,
		resetTokenRepository,
		jwtSvc,
		recorder,
		collector,
		log,
		cfg.ResetTokenTTL,
	)
	authHandler := auth.NewHandler(authService)

	patientRepository := patient.NewRepository(pool)
	patientCache := patient.NewRedisCache(rdb)
	patientService := patient.NewService(patientRepository, patientCache, recorder, collector, log)
	patientHandler := patient.NewHandler(patientService)

	adminHandler := admin.NewHandler(authService, eventRepository)

	// ── 9. Housekeeping Schedule ──────────────────────────────────────────
	// Hourly purge of expired, never-redeemed reset tokens. Idempotent, so
	// overlapping deploys or manual runs are harmless.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@hourly", func() {
		purgeCtx, purgeCancel := context.WithTimeout(appCtx, time.Minute)
		defer purgeCancel()
		if _, err := authService.PurgeExpiredResetTokens(purgeCtx); err != nil {
			log.Error("reset_token_purge_failed", slog.Any("error", err))
		}
	})
	must(log, err, "schedule reset-token purge")
	scheduler.Start()
	defer scheduler.Stop()

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Patient:   patientHandler,
		Admin:     adminHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, collector, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
