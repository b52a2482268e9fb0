package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/impairment-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// PostedEventProducer publishes impairment posted events keyed by calculation
type PostedEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewPostedEventProducer creates the posted event producer and ensures the topic exists.
// Writes are synchronous so the relay only marks outbox rows processed once acknowledged.
func NewPostedEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*PostedEventProducer, error) {
	if cfg.PostedTopic == "" {
		return nil, fmt.Errorf("kafka posted topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for posted event producer: %w", err)
	}
	defer conn.Close()

	err = ensureTopic(ctx, conn, cfg.PostedTopic, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure posted topic %s exists: %w", cfg.PostedTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.PostedTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &PostedEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.PostedTopic,
	}, nil
}

// Publish writes value as JSON under key
func (p *PostedEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal posted event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish posted event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish posted event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published posted event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *PostedEventProducer) Close() error {
	p.logger.Info("Closing posted event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
