package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/config"
	"github.com/SAP-F-2025/assignment-service/internal/handlers"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
	"github.com/SAP-F-2025/assignment-service/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	mode := flag.String("mode", "serve", "serve: run the HTTP API; sweep: reconcile progress and synthesize orphan assignments once, then exit")
	migrate := flag.Bool("migrate", false, "auto-migrate the schema before starting")
	flag.Parse()

	if err := run(*mode, *migrate); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode string, migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := pkg.Migrate(db); err != nil {
			return err
		}
		logger.Info("Database migrated")
	}

	cacheService := cache.CacheService(cache.NoopCache{})
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, filter options will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, "assignment", slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		publisher,
		cacheService,
		validator.New(),
		slogger,
		services.Options{
			FilterCacheTTL: cfg.FilterCacheTTL,
			OrphanWindow:   time.Duration(cfg.OrphanWindowDays) * 24 * time.Hour,
		},
	)

	switch mode {
	case "serve":
		return serve(ctx, cfg, serviceManager, logger)
	case "sweep":
		return sweep(ctx, serviceManager, logger)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func serve(ctx context.Context, cfg *config.Config, serviceManager services.ServiceManager, logger utils.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var parser handlers.TokenParser
	if cfg.Auth.Enabled {
		parser = handlers.NewCasdoorTokenParser(cfg.Auth)
	}

	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(serviceManager, parser, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "auth_enabled", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweep runs the maintenance passes once; scheduling is left to the platform
func sweep(ctx context.Context, serviceManager services.ServiceManager, logger utils.Logger) error {
	reconciled, err := serviceManager.Reconciliation().Reconcile(ctx, repositories.ReconcileScope{})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	logger.Info("Reconciliation finished",
		"scanned", reconciled.Scanned,
		"fixed", reconciled.FixedCount,
		"skipped", reconciled.SkippedCount,
		"created_records", reconciled.CreatedRecords)

	synthesized, err := serviceManager.Orphan().SynthesizeAll(ctx)
	if err != nil {
		return fmt.Errorf("orphan synthesis failed: %w", err)
	}
	logger.Info("Orphan synthesis finished",
		"created", synthesized.Created,
		"skipped", synthesized.SkippedCount)

	// sweeps follow bulk imports, which may have changed the catalog
	if err := serviceManager.Filter().Invalidate(ctx, ""); err != nil {
		return fmt.Errorf("filter invalidation failed: %w", err)
	}
	return nil
}
