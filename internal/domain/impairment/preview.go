package impairment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Preview is the itemised result of one calculator. The concrete types are
// ReceivablesPreview, AssetsPreview and InventoryPreview.
type Preview interface {
	CalcType() CalcType
	// Total is the amount that would be booked
	Total() decimal.Decimal
	ItemCount() int
}

type ReceivableItem struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	ReferenceDate time.Time       `json:"reference_date"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	DaysOverdue   int             `json:"days_overdue"`
	Bucket        Bucket          `json:"bucket"`
	Rate          decimal.Decimal `json:"rate"`
	ExpectedLoss  decimal.Decimal `json:"expected_loss"`
}

type ReceivablesSummary struct {
	TotalOutstanding  decimal.Decimal            `json:"total_outstanding"`
	TotalExpectedLoss decimal.Decimal            `json:"total_expected_loss"`
	ByBucket          map[Bucket]decimal.Decimal `json:"by_bucket"`
}

type ReceivablesPreview struct {
	Items   []ReceivableItem   `json:"items"`
	Summary ReceivablesSummary `json:"summary"`
}

func (p *ReceivablesPreview) CalcType() CalcType     { return CalcTypeReceivables }
func (p *ReceivablesPreview) Total() decimal.Decimal { return p.Summary.TotalExpectedLoss }
func (p *ReceivablesPreview) ItemCount() int         { return len(p.Items) }

type AssetItem struct {
	AssetID                 uuid.UUID       `json:"asset_id"`
	AssetName               string          `json:"asset_name"`
	Cost                    decimal.Decimal `json:"cost"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	CarryingAmount          decimal.Decimal `json:"carrying_amount"`
	RecoverableAmount       decimal.Decimal `json:"recoverable_amount"`
	ImpairmentLoss          decimal.Decimal `json:"impairment_loss"`
}

type AssetsSummary struct {
	TotalImpairment decimal.Decimal `json:"total_impairment"`
	Count           int             `json:"count"`
}

type AssetsPreview struct {
	Items   []AssetItem   `json:"items"`
	Summary AssetsSummary `json:"summary"`
}

func (p *AssetsPreview) CalcType() CalcType     { return CalcTypeAssets }
func (p *AssetsPreview) Total() decimal.Decimal { return p.Summary.TotalImpairment }
func (p *AssetsPreview) ItemCount() int         { return len(p.Items) }

type InventoryItem struct {
	ItemID         uuid.UUID       `json:"item_id"`
	ItemName       string          `json:"item_name"`
	SKU            string          `json:"sku,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	NRVPerUnit     decimal.Decimal `json:"nrv_per_unit"`
	CarryingAmount decimal.Decimal `json:"carrying_amount"`
	NRVTotal       decimal.Decimal `json:"nrv_total"`
	WriteDown      decimal.Decimal `json:"write_down"`
}

type InventorySummary struct {
	TotalWriteDown decimal.Decimal `json:"total_write_down"`
	Count          int             `json:"count"`
}

type InventoryPreview struct {
	Items   []InventoryItem  `json:"items"`
	Summary InventorySummary `json:"summary"`
}

func (p *InventoryPreview) CalcType() CalcType     { return CalcTypeInventory }
func (p *InventoryPreview) Total() decimal.Decimal { return p.Summary.TotalWriteDown }
func (p *InventoryPreview) ItemCount() int         { return len(p.Items) }

// Snapshot is the persisted form of a booked preview, tagged by calculation type.
// Exactly one of the variant fields is set and it matches CalcType.
type Snapshot struct {
	CalcType    CalcType            `json:"calc_type"`
	Receivables *ReceivablesPreview `json:"receivables,omitempty"`
	Assets      *AssetsPreview      `json:"assets,omitempty"`
	Inventory   *InventoryPreview   `json:"inventory,omitempty"`
}

// NewSnapshot wraps a preview in its tagged form
func NewSnapshot(p Preview) Snapshot {
	s := Snapshot{CalcType: p.CalcType()}
	switch v := p.(type) {
	case *ReceivablesPreview:
		s.Receivables = v
	case *AssetsPreview:
		s.Assets = v
	case *InventoryPreview:
		s.Inventory = v
	}
	return s
}

// Preview returns the variant selected by CalcType
func (s Snapshot) Preview() (Preview, error) {
	switch s.CalcType {
	case CalcTypeReceivables:
		if s.Receivables != nil {
			return s.Receivables, nil
		}
	case CalcTypeAssets:
		if s.Assets != nil {
			return s.Assets, nil
		}
	case CalcTypeInventory:
		if s.Inventory != nil {
			return s.Inventory, nil
		}
	default:
		return nil, ErrValidation{Field: "calc_type", Reason: fmt.Sprintf("unknown calculation type %q", s.CalcType)}
	}
	return nil, ErrValidation{Field: "preview", Reason: fmt.Sprintf("missing %s payload", s.CalcType)}
}

// checkItemAmount rejects item amounts the ledger cannot book verbatim
func checkItemAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return ErrValidation{Field: "preview", Reason: "item amounts must not be negative"}
	}
	if !v.Equal(Round2(v)) {
		return ErrValidation{Field: "preview", Reason: "item amounts must have at most two decimal places"}
	}
	return nil
}

// DecodePreview decodes a caller-supplied preview of the given type and checks
// that its summary total equals the sum of its item amounts. Item amounts must
// already be rounded to cents, so the total is too.
func DecodePreview(calcType CalcType, raw json.RawMessage) (Preview, error) {
	if len(raw) == 0 {
		return nil, ErrValidation{Field: "preview", Reason: "is required"}
	}

	var p Preview
	var itemsTotal decimal.Decimal
	switch calcType {
	case CalcTypeReceivables:
		var v ReceivablesPreview
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrValidation{Field: "preview", Reason: "is malformed"}
		}
		for _, it := range v.Items {
			if err := checkItemAmount(it.ExpectedLoss); err != nil {
				return nil, err
			}
			itemsTotal = itemsTotal.Add(it.ExpectedLoss)
		}
		p = &v
	case CalcTypeAssets:
		var v AssetsPreview
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrValidation{Field: "preview", Reason: "is malformed"}
		}
		for _, it := range v.Items {
			if err := checkItemAmount(it.ImpairmentLoss); err != nil {
				return nil, err
			}
			itemsTotal = itemsTotal.Add(it.ImpairmentLoss)
		}
		p = &v
	case CalcTypeInventory:
		var v InventoryPreview
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrValidation{Field: "preview", Reason: "is malformed"}
		}
		for _, it := range v.Items {
			if err := checkItemAmount(it.WriteDown); err != nil {
				return nil, err
			}
			itemsTotal = itemsTotal.Add(it.WriteDown)
		}
		p = &v
	default:
		return nil, ErrValidation{Field: "calc_type", Reason: fmt.Sprintf("unknown calculation type %q", calcType)}
	}

	if !p.Total().Equal(itemsTotal) {
		return nil, ErrValidation{Field: "preview", Reason: "summary total does not match items"}
	}
	return p, nil
}
