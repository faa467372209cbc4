package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/partnerdesk/platform/internal/domain"
	"github.com/segmentio/kafka-go"
)

// KafkaProducer publishes outbox events to Kafka. When disabled every publish
// is a no-op so the outbox still drains in local setups.
type KafkaProducer struct {
	writer      *kafka.Writer
	logger      *slog.Logger
	enabled     bool
	topicPrefix string
}

// NewKafkaProducer creates a Kafka producer. If brokers is empty or disabled, writes are no-ops.
func NewKafkaProducer(brokers string, enabled bool, topicPrefix string, logger *slog.Logger) *KafkaProducer {
	if !enabled || brokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{enabled: false, logger: logger, topicPrefix: topicPrefix}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic_prefix", topicPrefix)
	return &KafkaProducer{writer: w, logger: logger, enabled: true, topicPrefix: topicPrefix}
}

// TopicFor returns the topic an event is published to, e.g.
// "partnerdesk.partner.level.changed".
func (p *KafkaProducer) TopicFor(d domain.OutboxDraft) string {
	if p.topicPrefix == "" {
		return string(d.EventType)
	}
	return p.topicPrefix + "." + string(d.EventType)
}

// PublishEvent wraps the draft in an envelope and writes it keyed by its
// partition key, so one partner's events stay ordered.
func (p *KafkaProducer) PublishEvent(ctx context.Context, d domain.OutboxDraft) error {
	if !p.enabled {
		return nil
	}

	value, err := json.Marshal(map[string]interface{}{
		"event_id":       d.EventID,
		"aggregate_type": d.AggregateType,
		"aggregate_id":   d.AggregateID,
		"event_type":     d.EventType,
		"payload":        d.Payload,
		"occurred_at":    d.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.TopicFor(d),
		Key:   []byte(d.PartitionKey),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(d.EventType)},
			{Key: "event_id", Value: []byte(d.EventID.String())},
		},
	})
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
