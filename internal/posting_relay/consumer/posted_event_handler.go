package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/impairment-ledger/internal/platform/messaging/producers"
	"github.com/impairment-ledger/internal/posting_relay/service"
)

// PostedEventHandler handles impairment posted events from Kafka
type PostedEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewPostedEventHandler creates a new handler; producer may be nil when no DLQ is configured
func NewPostedEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *PostedEventHandler {
	return &PostedEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset.
func (h *PostedEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.ImpairmentPostedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("failed to unmarshal posted event: %s", err.Error()))
	}
	if err := event.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, err.Error())
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received posted event for projection",
		"event_id", event.EventID.String(),
		"calculation_id", event.CalculationID.String(),
		"calc_type", event.CalcType,
	)

	if err := h.projectionService.Project(ctx, &event); err != nil {
		return fmt.Errorf("projecting event %s failed: %w", event.EventID.String(), err)
	}
	return nil
}

// deadLetter parks an unprocessable message. Without a DLQ the error is
// returned so the offset is held.
func (h *PostedEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	h.logger.Error("Unprocessable posted event", "message_key", string(key), "reason", reason)

	if h.producer == nil {
		return fmt.Errorf("unprocessable posted event: %s", reason)
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "message_key", string(key), "error", err)
		return fmt.Errorf("unprocessable posted event: %s: %w", reason, err)
	}
	return nil
}
