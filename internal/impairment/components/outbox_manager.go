package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/domain/outbox"
	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry creates an outbox entry announcing a posted calculation
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *service.PostRequest, calc *impairment.Calculation, txn *ledger.Transaction) error {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	outboxRepoTx := m.outboxRepo.WithTx(tx)

	event := &shared.ImpairmentPostedEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypeImpairmentPosted,
		TenantID:      calc.TenantID,
		CalcType:      string(calc.CalcType),
		PeriodEnd:     calc.PeriodEnd.Format(impairment.DateLayout),
		CalculationID: calc.ID,
		TransactionID: txn.ID,
		Reference:     txn.Reference,
		Total:         calc.Total,
		ItemCount:     request.Preview.ItemCount(),
		PostedBy:      request.PostedBy,
		CorrelationID: request.CorrelationID,
		PostedAt:      time.Now().UTC(),
	}

	outboxMessage, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"calculation_id", calc.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for calculation %s: %w", calc.ID.String(), err)
	}

	if err = outboxRepoTx.Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"calculation_id", calc.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for calculation %s: %w", calc.ID.String(), err)
	}
	logger.Info("Outbox message created successfully",
		"calculation_id", calc.ID.String(),
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
