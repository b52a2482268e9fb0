// Package subledger holds the read models of the operational records the
// impairment calculations are derived from.
package subledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// OpenInvoiceStatuses are the statuses that can carry an outstanding balance
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusOverdue}

// Invoice is an issued sales invoice
type Invoice struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Number       string
	CustomerName string
	Status       InvoiceStatus
	Total        decimal.Decimal
	AmountPaid   decimal.Decimal
	InvoiceDate  time.Time
	DueDate      *time.Time
}

// Outstanding is the unpaid balance, never negative.
func (i Invoice) Outstanding() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.Total.Sub(i.AmountPaid))
}

// ReferenceDate is the date overdue days are counted from.
func (i Invoice) ReferenceDate() time.Time {
	if i.DueDate != nil {
		return *i.DueDate
	}
	return i.InvoiceDate
}

// AssetStatus is the lifecycle state of a fixed asset
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "active"
	AssetStatusDisposed AssetStatus = "disposed"
)

// FixedAsset is a capitalised long-lived asset
type FixedAsset struct {
	ID                      uuid.UUID
	TenantID                uuid.UUID
	Name                    string
	Cost                    decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	Status                  AssetStatus
}

// CarryingAmount is cost less accumulated depreciation, never negative.
func (a FixedAsset) CarryingAmount() decimal.Decimal {
	return decimal.Max(decimal.Zero, a.Cost.Sub(a.AccumulatedDepreciation))
}

// ItemType distinguishes stocked products from services
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// StockItem is an inventory item with its on-hand quantity
type StockItem struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	SKU            string
	Type           ItemType
	QuantityOnHand decimal.Decimal
	CostPrice      decimal.Decimal
}

// CarryingAmount is quantity on hand at cost.
func (s StockItem) CarryingAmount() decimal.Decimal {
	return s.QuantityOnHand.Mul(s.CostPrice)
}
