package subledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads the operational records feeding the impairment calculations
type Repository interface {
	ListOpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]Invoice, error)
	ListActiveAssets(ctx context.Context, tenantID uuid.UUID) ([]FixedAsset, error)
	ListProductStock(ctx context.Context, tenantID uuid.UUID) ([]StockItem, error)
}
