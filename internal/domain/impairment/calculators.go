package impairment

import (
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/subledger"
	"github.com/shopspring/decimal"
)

// Estimates are the caller-supplied inputs of the asset and inventory calculators
type Estimates struct {
	Recoverables map[uuid.UUID]decimal.Decimal // asset id -> recoverable amount
	NRV          map[uuid.UUID]decimal.Decimal // item id -> net realisable value per unit
}

// Validate rejects negative estimates
func (e Estimates) Validate() error {
	for id, v := range e.Recoverables {
		if v.IsNegative() {
			return ErrValidation{Field: "recoverables", Reason: "recoverable_amount for " + id.String() + " must not be negative"}
		}
	}
	for id, v := range e.NRV {
		if v.IsNegative() {
			return ErrValidation{Field: "nrv", Reason: "nrv_per_unit for " + id.String() + " must not be negative"}
		}
	}
	return nil
}

// Round2 rounds a monetary amount to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DaysOverdue counts whole calendar days from ref to periodEnd in UTC, floored at zero.
func DaysOverdue(periodEnd, ref time.Time) int {
	days := int(civilDate(periodEnd).Sub(civilDate(ref)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BucketFor assigns days overdue to an aging bucket; boundary values fall in the earlier bucket.
func BucketFor(daysOverdue int) Bucket {
	switch {
	case daysOverdue <= 30:
		return Bucket0To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// CalculateReceivables computes the expected credit loss of the open invoices.
func CalculateReceivables(periodEnd time.Time, invoices []subledger.Invoice, settings *Settings) *ReceivablesPreview {
	p := &ReceivablesPreview{
		Items: make([]ReceivableItem, 0, len(invoices)),
		Summary: ReceivablesSummary{
			TotalOutstanding:  decimal.Zero,
			TotalExpectedLoss: decimal.Zero,
			ByBucket:          make(map[Bucket]decimal.Decimal, len(Buckets)),
		},
	}
	for _, b := range Buckets {
		p.Summary.ByBucket[b] = decimal.Zero
	}

	for _, inv := range invoices {
		outstanding := Round2(inv.Outstanding())
		if !outstanding.IsPositive() {
			continue
		}

		ref := inv.ReferenceDate()
		days := DaysOverdue(periodEnd, ref)
		bucket := BucketFor(days)
		rate := settings.RateFor(bucket)
		loss := Round2(outstanding.Mul(rate))

		p.Items = append(p.Items, ReceivableItem{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.Number,
			CustomerName:  inv.CustomerName,
			ReferenceDate: ref,
			Outstanding:   outstanding,
			DaysOverdue:   days,
			Bucket:        bucket,
			Rate:          rate,
			ExpectedLoss:  loss,
		})
		p.Summary.TotalOutstanding = p.Summary.TotalOutstanding.Add(outstanding)
		p.Summary.TotalExpectedLoss = p.Summary.TotalExpectedLoss.Add(loss)
		p.Summary.ByBucket[bucket] = p.Summary.ByBucket[bucket].Add(loss)
	}

	return p
}

// CalculateAssets computes impairment losses for assets whose supplied
// recoverable amount is positive and below carrying amount.
func CalculateAssets(assets []subledger.FixedAsset, recoverables map[uuid.UUID]decimal.Decimal) *AssetsPreview {
	p := &AssetsPreview{
		Items:   make([]AssetItem, 0),
		Summary: AssetsSummary{TotalImpairment: decimal.Zero},
	}

	for _, a := range assets {
		if a.Status == subledger.AssetStatusDisposed {
			continue
		}
		recoverable, ok := recoverables[a.ID]
		if !ok {
			continue
		}
		carrying := a.CarryingAmount()
		if !recoverable.IsPositive() || !recoverable.LessThan(carrying) {
			continue
		}

		loss := Round2(carrying.Sub(recoverable))
		p.Items = append(p.Items, AssetItem{
			AssetID:                 a.ID,
			AssetName:               a.Name,
			Cost:                    a.Cost,
			AccumulatedDepreciation: a.AccumulatedDepreciation,
			CarryingAmount:          carrying,
			RecoverableAmount:       recoverable,
			ImpairmentLoss:          loss,
		})
		p.Summary.TotalImpairment = p.Summary.TotalImpairment.Add(loss)
	}
	p.Summary.Count = len(p.Items)

	return p
}

// CalculateInventory computes write-downs to net realisable value. Items without
// a supplied NRV are valued at cost and therefore produce no write-down.
func CalculateInventory(items []subledger.StockItem, nrv map[uuid.UUID]decimal.Decimal) *InventoryPreview {
	p := &InventoryPreview{
		Items:   make([]InventoryItem, 0),
		Summary: InventorySummary{TotalWriteDown: decimal.Zero},
	}

	for _, it := range items {
		if it.Type != "" && it.Type != subledger.ItemTypeProduct {
			continue
		}
		perUnit, ok := nrv[it.ID]
		if !ok {
			perUnit = it.CostPrice
		}
		carrying := it.CarryingAmount()
		nrvTotal := it.QuantityOnHand.Mul(perUnit)
		if !nrvTotal.LessThan(carrying) {
			continue
		}

		writeDown := Round2(carrying.Sub(nrvTotal))
		p.Items = append(p.Items, InventoryItem{
			ItemID:         it.ID,
			ItemName:       it.Name,
			SKU:            it.SKU,
			Quantity:       it.QuantityOnHand,
			CostPrice:      it.CostPrice,
			NRVPerUnit:     perUnit,
			CarryingAmount: Round2(carrying),
			NRVTotal:       Round2(nrvTotal),
			WriteDown:      writeDown,
		})
		p.Summary.TotalWriteDown = p.Summary.TotalWriteDown.Add(writeDown)
	}
	p.Summary.Count = len(p.Items)

	return p
}
