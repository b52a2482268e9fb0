// Package history is the read model of posted impairments kept in MongoDB.
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is one posted impairment as seen by the history read model
type Record struct {
	EventID       uuid.UUID            `json:"event_id" bson:"event_id"`
	TenantID      uuid.UUID            `json:"tenant_id" bson:"tenant_id"`
	CalcType      string               `json:"calc_type" bson:"calc_type"`
	PeriodEnd     string               `json:"period_end" bson:"period_end"`
	CalculationID uuid.UUID            `json:"calculation_id" bson:"calculation_id"`
	TransactionID uuid.UUID            `json:"transaction_id" bson:"transaction_id"`
	Reference     string               `json:"reference" bson:"reference"`
	Total         primitive.Decimal128 `json:"-" bson:"total"`
	ItemCount     int                  `json:"item_count" bson:"item_count"`
	PostedBy      string               `json:"posted_by,omitempty" bson:"posted_by,omitempty"`
	CorrelationID string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	PostedAt      time.Time            `json:"posted_at" bson:"posted_at"`
	ProjectedAt   time.Time            `json:"projected_at" bson:"projected_at"`
}

// NewRecord projects a posted event into a history record
func NewRecord(event *shared.ImpairmentPostedEvent) (*Record, error) {
	total, err := primitive.ParseDecimal128(event.Total.String())
	if err != nil {
		return nil, err
	}

	return &Record{
		EventID:       event.EventID,
		TenantID:      event.TenantID,
		CalcType:      event.CalcType,
		PeriodEnd:     event.PeriodEnd,
		CalculationID: event.CalculationID,
		TransactionID: event.TransactionID,
		Reference:     event.Reference,
		Total:         total,
		ItemCount:     event.ItemCount,
		PostedBy:      event.PostedBy,
		CorrelationID: event.CorrelationID,
		PostedAt:      event.PostedAt,
		ProjectedAt:   time.Now(),
	}, nil
}

// TotalAmount returns the posted total as a decimal
func (r *Record) TotalAmount() decimal.Decimal {
	d, err := decimal.NewFromString(r.Total.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
