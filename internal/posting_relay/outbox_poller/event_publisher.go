package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/outbox"
	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/impairment-ledger/internal/platform/messaging/producers"
)

// ErrUnpublishable marks an outbox message whose payload can never be published
var ErrUnpublishable = errors.New("outbox payload is not a valid posted event")

// EventPublisher publishes outbox messages as posted events
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher publishes outbox messages to the posted events topic
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Publish sends the message's event keyed by calculation id, then marks the
// message processed. A crash between the two republishes the event; consumers
// deduplicate by event id.
func (p *KafkaEventPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		p.logger.Error("Outbox payload is not a valid posted event",
			"outbox_id", message.ID, "calculation_id", message.CalculationID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("outbox %d: %w: %v", message.ID, ErrUnpublishable, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.CalculationID.String(), event); err != nil {
		return fmt.Errorf("failed to publish posted event for calculation %s: %w", event.CalculationID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "calculation_id", event.CalculationID.String(), "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", event.CalculationID, message.ID, err)
	}

	logger.Info("Published posted event",
		"outbox_id", message.ID,
		"calculation_id", event.CalculationID.String(),
		"event_id", event.EventID.String(),
	)
	return nil
}
