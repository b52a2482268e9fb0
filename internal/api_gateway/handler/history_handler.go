package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/impairment-ledger/internal/api_gateway/middleware"
	"github.com/impairment-ledger/internal/api_gateway/service"
	"github.com/impairment-ledger/internal/domain/impairment"
)

// HistoryHandler handles HTTP requests for the posting history
type HistoryHandler struct {
	historyService service.HistoryService
	logger         *slog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(logger *slog.Logger, historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// List retrieves the caller's paginated posting history, newest first
func (h *HistoryHandler) List(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		RespondWithDomainError(c, h.logger, impairment.ErrNotAuthenticated)
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.historyService.GetPostingHistory(
		c.Request.Context(),
		tenantID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get posting history", "tenant_id", tenantID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	items := make([]HistoryRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, mapHistoryRecordToResponse(record))
	}

	RespondWithPaginatedData(c, items, pagination.Page, pagination.PerPage, int(total))
}
