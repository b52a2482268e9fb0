package subledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoice_Outstanding(t *testing.T) {
	inv := Invoice{Total: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(400)}
	assert.True(t, inv.Outstanding().Equal(decimal.NewFromInt(600)))

	inv.AmountPaid = decimal.NewFromInt(1200)
	assert.True(t, inv.Outstanding().IsZero(), "overpaid invoices have nothing outstanding")
}

func TestInvoice_ReferenceDate(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := issued.AddDate(0, 0, 30)

	assert.Equal(t, issued, Invoice{InvoiceDate: issued}.ReferenceDate())
	assert.Equal(t, due, Invoice{InvoiceDate: issued, DueDate: &due}.ReferenceDate())
}

func TestFixedAsset_CarryingAmount(t *testing.T) {
	a := FixedAsset{Cost: decimal.NewFromInt(10000), AccumulatedDepreciation: decimal.NewFromInt(2500)}
	assert.True(t, a.CarryingAmount().Equal(decimal.NewFromInt(7500)))

	a.AccumulatedDepreciation = decimal.NewFromInt(12000)
	assert.True(t, a.CarryingAmount().IsZero())
}

func TestStockItem_CarryingAmount(t *testing.T) {
	s := StockItem{QuantityOnHand: decimal.NewFromInt(10), CostPrice: decimal.NewFromInt(20)}
	assert.True(t, s.CarryingAmount().Equal(decimal.NewFromInt(200)))
}
