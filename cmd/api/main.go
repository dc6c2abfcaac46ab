// Copyright (c) 2026 Pricewatch. All rights reserved.

// Command api is the entry point for the Pricewatch HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire catalog clients, repositories, and HTTP handlers.
//  7. Start the pending-search background loop (if enabled).
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

	"github.com/pricewatch/pricewatch/internal/api"
	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/importer"
	"github.com/pricewatch/pricewatch/internal/inventory"
	"github.com/pricewatch/pricewatch/internal/platform/config"
	"github.com/pricewatch/pricewatch/internal/platform/constants"
	"github.com/pricewatch/pricewatch/internal/platform/migration"
	pgstore "github.com/pricewatch/pricewatch/internal/platform/postgres"
	redisstore "github.com/pricewatch/pricewatch/internal/platform/redis"
	"github.com/pricewatch/pricewatch/internal/pricing"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "pricewatch"))
	slog.SetDefault(log)

	log.Info("[Pricewatch] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "pricewatch"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

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

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 7. Catalog Clients ────────────────────────────────────────────────
	estimator := pricing.NewEstimator(pricing.DefaultConfig(), nil, nil)

	itunes := catalog.NewITunesClient(cfg.ITunesBaseURL, cfg.CatalogTimeout, estimator, log)
	movies := catalog.NewCachedMovieSearcher(itunes, rdb, cfg.CatalogCacheTTL, log)

	googleBooks := catalog.NewGoogleBooksClient(cfg.GoogleBooksBaseURL, cfg.CatalogTimeout, estimator, log)
	books := catalog.NewCachedBookSearcher(googleBooks, rdb, cfg.CatalogCacheTTL, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	itemRepository := inventory.NewPostgresRepository(pool)
	inventoryService := inventory.NewService(itemRepository, movies, books, log)
	inventoryHandler := inventory.NewHandler(inventoryService)

	catalogHandler := catalog.NewHandler(books)

	pendingRepository := importer.NewPostgresRepository(pool)
	engine := importer.NewEngine(itemRepository, pendingRepository, movies, log)
	processor := importer.NewProcessor(pendingRepository, itemRepository, movies, log, nil)
	importerHandler := importer.NewHandler(engine, processor, movies, pendingRepository)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Importer:  importerHandler,
		Catalog:   catalogHandler,
		Inventory: inventoryHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 10. Background Pending Loop ───────────────────────────────────────
	// Retries queued lookups on a fixed interval. A zero interval disables
	// the loop; the HTTP trigger endpoint still works either way.
	if cfg.PendingRetryInterval > 0 {
		go runPendingLoop(serverCtx, processor, cfg.PendingRetryInterval, log)
	}

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

	// Stop the background loop before draining HTTP.
	serverCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// runPendingLoop processes the pending-search queue on a fixed ticker until
// the context is cancelled.
func runPendingLoop(ctx context.Context, processor *importer.Processor, interval time.Duration, log *slog.Logger) {
	log.Info("pending_loop_started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("pending_loop_stopped")
			return
		case <-ticker.C:
			result, err := processor.ProcessBatch(ctx)
			if err != nil {
				log.Error("pending_loop_run_failed", slog.Any("error", err))
				continue
			}
			if result.Processed > 0 {
				log.Info("pending_loop_run",
					slog.Int("processed", result.Processed),
					slog.Int("imported", result.Imported),
					slog.Int("failed", result.Failed),
				)
			}
		}
	}
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
