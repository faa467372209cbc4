package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partnerdesk/platform/internal/app"
	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/guard"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/projection"
	"github.com/partnerdesk/platform/internal/repository"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	tiers, err := cfg.TierTable()
	if err != nil {
		return fmt.Errorf("load tier table: %w", err)
	}
	logger.Info("tier table loaded", "tiers", tiers.String())

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DSN(), cfg.MigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Level cache
	var (
		cache       projection.Store = projection.NewInMemoryStore()
		redisClient *redis.Client
	)
	if cfg.RedisEnabled {
		redisClient, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		cache = projection.NewRedisStore(redisClient, "partnerdesk")
		logger.Info("connected to redis")
	}

	// Event relay
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, cfg.KafkaTopicPrefix, logger)
	defer producer.Close()
	if cfg.KafkaEnabled {
		feed := repository.NewOutboxFeed(pool, repository.NewOutboxRepository())
		poller := infra.NewOutboxPoller(feed, producer, guard.NewCircuitBreaker(5, 30*time.Second), cfg.OutboxInterval, cfg.OutboxBatchSize, logger)
		poller.Start(ctx)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAdminExpiry, cfg.JWTPartnerExpiry)

	r, err := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		Tiers:              tiers,
		Cache:              cache,
		CacheTTL:           cfg.LevelCacheTTL,
		Redis:              redisClient,
		RefreshLimit:       cfg.RefreshRateLimit,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
