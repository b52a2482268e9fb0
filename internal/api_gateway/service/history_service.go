package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/history"
)

// HistoryServiceImpl implements the HistoryService interface
type HistoryServiceImpl struct {
	historyRepo history.Repository
	logger      *slog.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(logger *slog.Logger, historyRepo history.Repository) HistoryService {
	return &HistoryServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetPostingHistory retrieves a page of the tenant's postings
// Returns records, total count, and any error
func (s *HistoryServiceImpl) GetPostingHistory(ctx context.Context, tenantID uuid.UUID, page, perPage int) ([]*history.Record, int64, error) {
	offset := (page - 1) * perPage
	records, err := s.historyRepo.ListByTenant(ctx, tenantID, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list posting history", "tenant_id", tenantID.String(), "error", err)
		return nil, 0, err
	}

	total, err := s.historyRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to count posting history", "tenant_id", tenantID.String(), "error", err)
		return nil, 0, err
	}

	return records, total, nil
}
