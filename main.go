package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"articles-service/config"
	"articles-service/controllers"
	"articles-service/database"
	"articles-service/middlewares"
	"articles-service/repository"
	"articles-service/routes"
	"articles-service/services"
	"articles-service/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		slog.Error("articles-service stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// ---- Telemetry (optional)
	var provider *telemetry.Provider
	if cfg.OTelEnabled {
		provider, err = telemetry.NewProvider(ctx, telemetry.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.Environment,
		})
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
	}

	// ---- Storage
	articleRepo, idempotencyRepo, db, err := openStores(cfg)
	if err != nil {
		return err
	}

	service, err := services.NewArticleService(articleRepo)
	if err != nil {
		return fmt.Errorf("initializing article service: %w", err)
	}

	app := newApp(cfg, logger)
	routes.Register(app, controllers.NewArticleController(service), idempotencyRepo)

	// ---- Start
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "API server starting",
			slog.String("addr", cfg.Addr()),
			slog.String("store", cfg.Store),
		)
		errCh <- app.Listen(cfg.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening: %w", err)
		}
	case <-sigCh:
		logger.InfoContext(ctx, "shutting down...")
	}

	// ---- Graceful shutdown: HTTP first, then telemetry, then the pool
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "failed to shutdown server", slog.String("error", err.Error()))
	}
	if provider != nil {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "failed to shutdown telemetry", slog.String("error", err.Error()))
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logger.ErrorContext(shutdownCtx, "failed to close database", slog.String("error", err.Error()))
		}
	}

	logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// openStores picks the article and idempotency stores for cfg.Store. The returned *gorm.DB is
// nil for the memory store.
func openStores(cfg *config.Config) (repository.ArticleRepository, repository.IdempotencyRepository, *gorm.DB, error) {
	var idempotency repository.IdempotencyRepository

	if cfg.Store == config.StoreMemory {
		if cfg.IdempotencyEnabled {
			idempotency = repository.NewMemoryIdempotencyRepository()
		}
		return repository.NewMemoryArticleRepository(), idempotency, nil, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, nil, err
	}
	if cfg.IdempotencyEnabled {
		idempotency = repository.NewGormIdempotencyRepository(db)
	}

	if cfg.Store == config.StoreSQL {
		sqlDB, err := db.DB()
		if err != nil {
			_ = database.Close(db)
			return nil, nil, nil, err
		}
		return repository.NewSQLArticleRepository(sqlDB), idempotency, db, nil
	}
	return repository.NewGormArticleRepository(db), idempotency, db, nil
}

// newApp builds the fiber app with the global error handler and the middleware chain.
func newApp(cfg *config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middlewares.ErrorHandler,
		BodyLimit:             cfg.BodyLimitBytes,
		DisableStartupMessage: true,
	})

	app.Use(middlewares.RequestID())
	app.Use(middlewares.Tracing())
	app.Use(middlewares.RequestLogger(logger))

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key, X-Request-ID, traceparent",
	}))

	// ---- Global rate limiter (0 disables)
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
		}))
	}

	return app
}
