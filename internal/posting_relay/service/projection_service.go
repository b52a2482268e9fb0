package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/history"
	"github.com/impairment-ledger/internal/domain/shared"
)

type ProjectionServiceImpl struct {
	historyRepo history.Repository
	logger      *slog.Logger
}

func NewProjectionService(historyRepo history.Repository, logger *slog.Logger) ProjectionService {
	return &ProjectionServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Project writes the history record of event
func (s *ProjectionServiceImpl) Project(ctx context.Context, event *shared.ImpairmentPostedEvent) error {
	logger := s.logger.With("event_id", event.EventID.String(), "calculation_id", event.CalculationID.String())
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	record, err := history.NewRecord(event)
	if err != nil {
		return fmt.Errorf("failed to build history record for event %s: %w", event.EventID, err)
	}

	if err := s.historyRepo.Create(ctx, record); err != nil {
		if errors.Is(err, history.ErrDuplicateRecord{}) {
			logger.Info("Posted event already projected, skipping")
			return nil
		}
		logger.Error("Failed to project posted event", "error", err)
		return fmt.Errorf("failed to project event %s: %w", event.EventID, err)
	}

	logger.Info("Projected posted event into history",
		"tenant_id", event.TenantID.String(),
		"calc_type", event.CalcType,
		"period_end", event.PeriodEnd,
	)
	return nil
}
