package infra

import (
	"context"
	"log/slog"
	"time"

	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/guard"
)

const outboxCircuitKey = "outbox-publisher"

// OutboxSource reads and acknowledges rows of the event_outbox table.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// EventPublisher delivers one outbox event to the broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, d domain.OutboxDraft) error
}

// OutboxPoller relays outbox rows to the event publisher in sequence order.
type OutboxPoller struct {
	source    OutboxSource
	publisher EventPublisher
	breaker   *guard.CircuitBreaker
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(source OutboxSource, publisher EventPublisher, breaker *guard.CircuitBreaker, interval time.Duration, batchSize int, logger *slog.Logger) *OutboxPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxPoller{
		source:    source,
		publisher: publisher,
		breaker:   breaker,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	go p.Run(ctx)
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch and returns how many rows were acknowledged.
// Publishing stops at the first failure so later events never overtake an
// earlier one; the failed row is retried on the next poll.
func (p *OutboxPoller) PollOnce(ctx context.Context) (int, error) {
	if verdict := p.breaker.Check(ctx, outboxCircuitKey); !verdict.Allowed {
		p.logger.Warn("outbox publishing paused", "reason", verdict.Reason)
		OutboxPublished.WithLabelValues("skipped").Inc()
		return 0, nil
	}

	rows, err := p.source.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if err := p.publisher.PublishEvent(ctx, row.OutboxDraft); err != nil {
			p.breaker.RecordFailure(outboxCircuitKey)
			OutboxPublished.WithLabelValues("failed").Inc()
			p.logger.Error("publish outbox event failed",
				"seq_id", row.SeqID,
				"event_id", row.EventID,
				"event_type", row.EventType,
				"error", err,
			)
			break
		}
		p.breaker.RecordSuccess(outboxCircuitKey)
		OutboxPublished.WithLabelValues("published").Inc()
		ids = append(ids, row.SeqID)
	}

	if len(ids) == 0 {
		return 0, nil
	}
	if err := p.source.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}

	p.logger.Debug("outbox poll complete", "published", len(ids))
	return len(ids), nil
}
