package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidEvent = errors.New("invalid impairment posted event")

// ImpairmentPostedEvent is published once an impairment posting has committed
type ImpairmentPostedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	Type          EventType       `json:"type"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	CalcType      string          `json:"calc_type"`
	PeriodEnd     string          `json:"period_end"` // YYYY-MM-DD
	CalculationID uuid.UUID       `json:"calculation_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PostedBy      string          `json:"posted_by,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	PostedAt      time.Time       `json:"posted_at"`
}

// Validate checks the identifiers a consumer relies on
func (e *ImpairmentPostedEvent) Validate() error {
	if e.EventID == uuid.Nil || e.TenantID == uuid.Nil || e.CalculationID == uuid.Nil || e.TransactionID == uuid.Nil {
		return ErrInvalidEvent
	}
	if e.CalcType == "" || e.PeriodEnd == "" {
		return ErrInvalidEvent
	}
	return nil
}
