package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partnerdesk/platform/internal/guard"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

// run relays event_outbox rows to Kafka until interrupted. It is the
// standalone alternative to the relay embedded in the API process.
func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled {
		return fmt.Errorf("KAFKA_ENABLED is false; nothing to relay to")
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, true, cfg.KafkaTopicPrefix, logger)
	defer producer.Close()

	feed := repository.NewOutboxFeed(pool, repository.NewOutboxRepository())
	poller := infra.NewOutboxPoller(feed, producer, guard.NewCircuitBreaker(5, 30*time.Second), cfg.OutboxInterval, cfg.OutboxBatchSize, logger)

	logger.Info("outbox-consumer starting", "poll_interval", cfg.OutboxInterval, "batch_size", cfg.OutboxBatchSize)
	poller.Run(ctx)
	logger.Info("outbox-consumer shutting down")
	return nil
}
