package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/subledger"
	"github.com/impairment-ledger/internal/platform/persistence"
)

// SubledgerRepository reads invoices, fixed assets and stock items from PostgreSQL
type SubledgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSubledgerRepository creates a new PostgreSQL subledger reader
func NewSubledgerRepository(logger *slog.Logger, db *persistence.PostgresDB) subledger.Repository {
	return &SubledgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// ListOpenInvoices returns the tenant's invoices in an open status
func (r *SubledgerRepository) ListOpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]subledger.Invoice, error) {
	query := `
		SELECT id, tenant_id, invoice_number, customer_name, status, total, amount_paid, invoice_date, due_date
		FROM invoices
		WHERE tenant_id = $1 AND status = ANY($2)
		ORDER BY invoice_date, invoice_number
	`

	statuses := make([]string, 0, len(subledger.OpenInvoiceStatuses))
	for _, s := range subledger.OpenInvoiceStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.querier.Query(ctx, query, tenantID, statuses)
	if err != nil {
		r.logger.Error("Failed to list open invoices", "tenant_id", tenantID.String(), "error", err)
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	defer rows.Close()

	var invoices []subledger.Invoice
	for rows.Next() {
		var inv subledger.Invoice
		err := rows.Scan(
			&inv.ID,
			&inv.TenantID,
			&inv.Number,
			&inv.CustomerName,
			&inv.Status,
			&inv.Total,
			&inv.AmountPaid,
			&inv.InvoiceDate,
			&inv.DueDate,
		)
		if err != nil {
			r.logger.Error("Failed to scan invoice", "error", err)
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over invoices: %w", err)
	}

	return invoices, nil
}

// ListActiveAssets returns the tenant's fixed assets that have not been disposed
func (r *SubledgerRepository) ListActiveAssets(ctx context.Context, tenantID uuid.UUID) ([]subledger.FixedAsset, error) {
	query := `
		SELECT id, tenant_id, name, cost, accumulated_depreciation, status
		FROM fixed_assets
		WHERE tenant_id = $1 AND status <> $2
		ORDER BY name, id
	`

	rows, err := r.querier.Query(ctx, query, tenantID, subledger.AssetStatusDisposed)
	if err != nil {
		r.logger.Error("Failed to list fixed assets", "tenant_id", tenantID.String(), "error", err)
		return nil, fmt.Errorf("failed to list fixed assets: %w", err)
	}
	defer rows.Close()

	var assets []subledger.FixedAsset
	for rows.Next() {
		var a subledger.FixedAsset
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Name, &a.Cost, &a.AccumulatedDepreciation, &a.Status); err != nil {
			r.logger.Error("Failed to scan fixed asset", "error", err)
			return nil, fmt.Errorf("failed to scan fixed asset: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over fixed assets: %w", err)
	}

	return assets, nil
}

// ListProductStock returns the tenant's product items with stock on hand
func (r *SubledgerRepository) ListProductStock(ctx context.Context, tenantID uuid.UUID) ([]subledger.StockItem, error) {
	query := `
		SELECT id, tenant_id, name, sku, item_type, quantity_on_hand, cost_price
		FROM items
		WHERE tenant_id = $1 AND item_type = $2 AND quantity_on_hand > 0
		ORDER BY name, id
	`

	rows, err := r.querier.Query(ctx, query, tenantID, subledger.ItemTypeProduct)
	if err != nil {
		r.logger.Error("Failed to list stock items", "tenant_id", tenantID.String(), "error", err)
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	defer rows.Close()

	var items []subledger.StockItem
	for rows.Next() {
		var it subledger.StockItem
		var sku *string
		if err := rows.Scan(&it.ID, &it.TenantID, &it.Name, &sku, &it.Type, &it.QuantityOnHand, &it.CostPrice); err != nil {
			r.logger.Error("Failed to scan stock item", "error", err)
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		if sku != nil {
			it.SKU = *sku
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over stock items: %w", err)
	}

	return items, nil
}
