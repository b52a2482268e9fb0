package impairment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/subledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var periodEnd = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoiceDueDaysAgo(days int, total string) subledger.Invoice {
	due := periodEnd.AddDate(0, 0, -days)
	return subledger.Invoice{
		ID:           uuid.New(),
		Number:       "INV-0001",
		CustomerName: "Acme Ltd",
		Status:       subledger.InvoiceStatusSent,
		Total:        dec(total),
		AmountPaid:   decimal.Zero,
		InvoiceDate:  due.AddDate(0, 0, -30),
		DueDate:      &due,
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		days int
		want Bucket
	}{
		{0, Bucket0To30},
		{30, Bucket0To30},
		{31, Bucket31To60},
		{60, Bucket31To60},
		{61, Bucket61To90},
		{90, Bucket61To90},
		{91, Bucket90Plus},
		{400, Bucket90Plus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.days), "days=%d", tt.days)
	}
}

func TestDaysOverdue(t *testing.T) {
	assert.Equal(t, 45, DaysOverdue(periodEnd, periodEnd.AddDate(0, 0, -45)))
	assert.Equal(t, 0, DaysOverdue(periodEnd, periodEnd.AddDate(0, 0, 10)), "not yet due is floored at zero")

	// time of day and zone do not change the calendar difference
	late := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysOverdue(periodEnd, late))
}

func TestCalculateReceivables(t *testing.T) {
	settings := DefaultSettings(uuid.New())

	t.Run("EndToEndExample", func(t *testing.T) {
		inv := invoiceDueDaysAgo(45, "1000.00")

		p := CalculateReceivables(periodEnd, []subledger.Invoice{inv}, settings)

		require.Len(t, p.Items, 1)
		item := p.Items[0]
		assert.Equal(t, inv.ID, item.InvoiceID)
		assert.Equal(t, "INV-0001", item.InvoiceNumber)
		assert.Equal(t, 45, item.DaysOverdue)
		assert.Equal(t, Bucket31To60, item.Bucket)
		assert.True(t, item.Rate.Equal(dec("0.05")))
		assert.True(t, item.ExpectedLoss.Equal(dec("50.00")))
		assert.True(t, p.Summary.TotalOutstanding.Equal(dec("1000")))
		assert.True(t, p.Total().Equal(dec("50")))
		assert.True(t, p.Summary.ByBucket[Bucket31To60].Equal(dec("50")))
		assert.True(t, p.Summary.ByBucket[Bucket0To30].IsZero())
	})

	t.Run("BoundaryBuckets", func(t *testing.T) {
		invoices := []subledger.Invoice{
			invoiceDueDaysAgo(30, "100"),
			invoiceDueDaysAgo(31, "100"),
			invoiceDueDaysAgo(90, "100"),
			invoiceDueDaysAgo(91, "100"),
		}

		p := CalculateReceivables(periodEnd, invoices, settings)

		require.Len(t, p.Items, 4)
		assert.Equal(t, Bucket0To30, p.Items[0].Bucket)
		assert.Equal(t, Bucket31To60, p.Items[1].Bucket)
		assert.Equal(t, Bucket61To90, p.Items[2].Bucket)
		assert.Equal(t, Bucket90Plus, p.Items[3].Bucket)
		// 1 + 5 + 20 + 50
		assert.True(t, p.Total().Equal(dec("76")))
	})

	t.Run("UsesInvoiceDateWithoutDueDate", func(t *testing.T) {
		inv := invoiceDueDaysAgo(0, "200")
		inv.DueDate = nil
		inv.InvoiceDate = periodEnd.AddDate(0, 0, -70)

		p := CalculateReceivables(periodEnd, []subledger.Invoice{inv}, settings)

		require.Len(t, p.Items, 1)
		assert.Equal(t, 70, p.Items[0].DaysOverdue)
		assert.Equal(t, Bucket61To90, p.Items[0].Bucket)
	})

	t.Run("SkipsSettledInvoices", func(t *testing.T) {
		paid := invoiceDueDaysAgo(100, "500")
		paid.AmountPaid = dec("500")
		overpaid := invoiceDueDaysAgo(100, "500")
		overpaid.AmountPaid = dec("650")

		p := CalculateReceivables(periodEnd, []subledger.Invoice{paid, overpaid}, settings)

		assert.Empty(t, p.Items)
		assert.True(t, p.Total().IsZero())
		assert.Len(t, p.Summary.ByBucket, len(Buckets))
	})

	t.Run("RoundsEachItemBeforeSumming", func(t *testing.T) {
		custom := DefaultSettings(uuid.New())
		custom.Rate0To30 = dec("0.015")
		invoices := []subledger.Invoice{
			invoiceDueDaysAgo(5, "0.30"),
			invoiceDueDaysAgo(5, "0.30"),
			invoiceDueDaysAgo(5, "0.30"),
		}

		p := CalculateReceivables(periodEnd, invoices, custom)

		// each 0.0045 rounds to 0.00, so the total is 0 rather than round2(0.0135)=0.01
		for _, it := range p.Items {
			assert.True(t, it.ExpectedLoss.IsZero())
		}
		assert.True(t, p.Total().IsZero())
	})
}

func TestCalculateAssets(t *testing.T) {
	impaired := subledger.FixedAsset{ID: uuid.New(), Name: "Press", Cost: dec("10000"), AccumulatedDepreciation: dec("4000"), Status: subledger.AssetStatusActive}
	healthy := subledger.FixedAsset{ID: uuid.New(), Name: "Van", Cost: dec("5000"), AccumulatedDepreciation: dec("1000"), Status: subledger.AssetStatusActive}
	zeroRecoverable := subledger.FixedAsset{ID: uuid.New(), Name: "Lathe", Cost: dec("3000"), AccumulatedDepreciation: dec("0"), Status: subledger.AssetStatusActive}
	disposed := subledger.FixedAsset{ID: uuid.New(), Name: "Old server", Cost: dec("2000"), AccumulatedDepreciation: dec("500"), Status: subledger.AssetStatusDisposed}
	noEstimate := subledger.FixedAsset{ID: uuid.New(), Name: "Desk", Cost: dec("800"), AccumulatedDepreciation: dec("100"), Status: subledger.AssetStatusActive}

	recoverables := map[uuid.UUID]decimal.Decimal{
		impaired.ID:        dec("4500.555"),
		healthy.ID:         dec("4000"),
		zeroRecoverable.ID: dec("0"),
		disposed.ID:        dec("100"),
	}

	p := CalculateAssets([]subledger.FixedAsset{impaired, healthy, zeroRecoverable, disposed, noEstimate}, recoverables)

	require.Len(t, p.Items, 1)
	item := p.Items[0]
	assert.Equal(t, impaired.ID, item.AssetID)
	assert.Equal(t, "Press", item.AssetName)
	assert.True(t, item.CarryingAmount.Equal(dec("6000")))
	assert.True(t, item.ImpairmentLoss.Equal(dec("1499.45")), "got %s", item.ImpairmentLoss)
	assert.Equal(t, 1, p.Summary.Count)
	assert.True(t, p.Total().Equal(dec("1499.45")))
}

func TestCalculateInventory(t *testing.T) {
	t.Run("EndToEndExample", func(t *testing.T) {
		item := subledger.StockItem{ID: uuid.New(), Name: "Widget", SKU: "W-1", Type: subledger.ItemTypeProduct, QuantityOnHand: dec("10"), CostPrice: dec("20")}

		p := CalculateInventory([]subledger.StockItem{item}, map[uuid.UUID]decimal.Decimal{item.ID: dec("15")})

		require.Len(t, p.Items, 1)
		assert.True(t, p.Items[0].CarryingAmount.Equal(dec("200")))
		assert.True(t, p.Items[0].NRVTotal.Equal(dec("150")))
		assert.True(t, p.Items[0].WriteDown.Equal(dec("50.00")))
		assert.Equal(t, "W-1", p.Items[0].SKU)
		assert.Equal(t, 1, p.Summary.Count)
		assert.True(t, p.Total().Equal(dec("50")))
	})

	t.Run("MissingNRVDefaultsToCost", func(t *testing.T) {
		item := subledger.StockItem{ID: uuid.New(), Name: "Gadget", Type: subledger.ItemTypeProduct, QuantityOnHand: dec("3"), CostPrice: dec("9.99")}

		p := CalculateInventory([]subledger.StockItem{item}, nil)

		assert.Empty(t, p.Items)
		assert.True(t, p.Total().IsZero())
	})

	t.Run("NRVAboveCostIsIgnored", func(t *testing.T) {
		item := subledger.StockItem{ID: uuid.New(), Name: "Gizmo", Type: subledger.ItemTypeProduct, QuantityOnHand: dec("4"), CostPrice: dec("5")}

		p := CalculateInventory([]subledger.StockItem{item}, map[uuid.UUID]decimal.Decimal{item.ID: dec("7")})

		assert.Empty(t, p.Items)
	})

	t.Run("SkipsServices", func(t *testing.T) {
		svc := subledger.StockItem{ID: uuid.New(), Name: "Consulting", Type: subledger.ItemTypeService, QuantityOnHand: dec("1"), CostPrice: dec("100")}

		p := CalculateInventory([]subledger.StockItem{svc}, map[uuid.UUID]decimal.Decimal{svc.ID: dec("1")})

		assert.Empty(t, p.Items)
	})
}

func TestEstimates_Validate(t *testing.T) {
	assert.NoError(t, Estimates{}.Validate())
	assert.NoError(t, Estimates{Recoverables: map[uuid.UUID]decimal.Decimal{uuid.New(): dec("0")}}.Validate())

	err := Estimates{NRV: map[uuid.UUID]decimal.Decimal{uuid.New(): dec("-1")}}.Validate()
	assert.ErrorIs(t, err, ErrValidation{Field: "nrv"})

	err = Estimates{Recoverables: map[uuid.UUID]decimal.Decimal{uuid.New(): dec("-0.01")}}.Validate()
	assert.ErrorIs(t, err, ErrValidation{Field: "recoverables"})
}
