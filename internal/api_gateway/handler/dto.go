package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/history"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Actions accepted by the action endpoint
const (
	ActionPreviewReceivables = "preview_receivables"
	ActionPostReceivables    = "post_receivables"
	ActionPreviewAssets      = "preview_assets"
	ActionPostAssets         = "post_assets"
	ActionPreviewInventory   = "preview_inventory"
	ActionPostInventory      = "post_inventory"
	ActionGetSettings        = "get_settings"
	ActionUpdateSettings     = "update_settings"
	ActionGetLock            = "get_lock"
	ActionSetLock            = "set_lock"
)

// ActionRequest represents a request to the action endpoint
type ActionRequest struct {
	Action    string          `json:"action" validate:"required,oneof=preview_receivables post_receivables preview_assets post_assets preview_inventory post_inventory get_settings update_settings get_lock set_lock"`
	PeriodEnd string          `json:"period_end" validate:"required"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// RecoverableParam is a caller-estimated recoverable amount of one asset
type RecoverableParam struct {
	AssetID           string          `json:"asset_id" validate:"required,uuid"`
	RecoverableAmount decimal.Decimal `json:"recoverable_amount"`
}

// NRVParam is a caller-estimated net realisable value per unit of one item
type NRVParam struct {
	ItemID     string          `json:"item_id" validate:"required,uuid"`
	NRVPerUnit decimal.Decimal `json:"nrv_per_unit"`
}

// CalculationParams are the params of the preview and post actions
type CalculationParams struct {
	Recoverables []RecoverableParam `json:"recoverables,omitempty" validate:"dive"`
	NRV          []NRVParam         `json:"nrv,omitempty" validate:"dive"`
	// Preview is the previewed result to book when posts do not recompute
	Preview json.RawMessage `json:"preview,omitempty"`
}

// SettingsParams are the params of update_settings
type SettingsParams struct {
	ECL0To30  *decimal.Decimal `json:"ecl_0_30" validate:"required"`
	ECL31To60 *decimal.Decimal `json:"ecl_31_60" validate:"required"`
	ECL61To90 *decimal.Decimal `json:"ecl_61_90" validate:"required"`
	ECL90Plus *decimal.Decimal `json:"ecl_90_plus" validate:"required"`
}

// LockParams are the params of get_lock and set_lock
type LockParams struct {
	Module string `json:"module" validate:"required,oneof=receivables assets inventory"`
	Locked *bool  `json:"locked,omitempty"`
}

// SetLockRequest represents a request to the lock REST endpoint
type SetLockRequest struct {
	PeriodEnd string `json:"period_end" validate:"required"`
	Module    string `json:"module" validate:"required,oneof=receivables assets inventory"`
	Locked    *bool  `json:"locked" validate:"required"`
}

// LockResponse represents a period lock in API responses
type LockResponse struct {
	Module    string `json:"module"`
	PeriodEnd string `json:"period_end"`
	Locked    bool   `json:"locked"`
	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SettingsResponse represents ECL settings in API responses
type SettingsResponse struct {
	ECL0To30  decimal.Decimal `json:"ecl_0_30"`
	ECL31To60 decimal.Decimal `json:"ecl_31_60"`
	ECL61To90 decimal.Decimal `json:"ecl_61_90"`
	ECL90Plus decimal.Decimal `json:"ecl_90_plus"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// CalculationResponse represents a posted calculation in API responses
type CalculationResponse struct {
	CalculationID string               `json:"calculation_id"`
	CalcType      string               `json:"calc_type"`
	PeriodEnd     string               `json:"period_end"`
	Status        string               `json:"status"`
	Total         decimal.Decimal      `json:"total"`
	TransactionID string               `json:"transaction_id,omitempty"`
	Transaction   *TransactionResponse `json:"transaction,omitempty"`
	Result        impairment.Preview   `json:"result"`
	CreatedBy     string               `json:"created_by,omitempty"`
	CreatedAt     string               `json:"created_at"`
}

// TransactionResponse represents a booked ledger transaction in API responses
type TransactionResponse struct {
	ID          string                    `json:"id"`
	Date        string                    `json:"date"`
	Reference   string                    `json:"reference"`
	Description string                    `json:"description"`
	Status      string                    `json:"status"`
	Total       decimal.Decimal           `json:"total"`
	Lines       []TransactionLineResponse `json:"lines"`
}

// TransactionLineResponse represents one debit or credit line
type TransactionLineResponse struct {
	AccountID     string          `json:"account_id"`
	AccountCode   string          `json:"account_code"`
	AccountName   string          `json:"account_name"`
	NormalBalance string          `json:"normal_balance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// HistoryRecordResponse represents a posting history record in API responses
type HistoryRecordResponse struct {
	CalculationID string          `json:"calculation_id"`
	TransactionID string          `json:"transaction_id"`
	CalcType      string          `json:"calc_type"`
	PeriodEnd     string          `json:"period_end"`
	Reference     string          `json:"reference"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PostedBy      string          `json:"posted_by,omitempty"`
	PostedAt      string          `json:"posted_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func (p CalculationParams) estimates() impairment.Estimates {
	est := impairment.Estimates{}
	if len(p.Recoverables) > 0 {
		est.Recoverables = make(map[uuid.UUID]decimal.Decimal, len(p.Recoverables))
		for _, r := range p.Recoverables {
			est.Recoverables[uuid.MustParse(r.AssetID)] = r.RecoverableAmount
		}
	}
	if len(p.NRV) > 0 {
		est.NRV = make(map[uuid.UUID]decimal.Decimal, len(p.NRV))
		for _, n := range p.NRV {
			est.NRV[uuid.MustParse(n.ItemID)] = n.NRVPerUnit
		}
	}
	return est
}

func mapLockToResponse(lock *impairment.PeriodLock) LockResponse {
	response := LockResponse{
		Module:    string(lock.Module),
		PeriodEnd: lock.PeriodEnd.Format(impairment.DateLayout),
		Locked:    lock.Locked,
		UpdatedBy: lock.UpdatedBy,
	}
	if !lock.UpdatedAt.IsZero() {
		response.UpdatedAt = lock.UpdatedAt.Format(time.RFC3339)
	}
	return response
}

func mapSettingsToResponse(settings *impairment.Settings) SettingsResponse {
	response := SettingsResponse{
		ECL0To30:  settings.Rate0To30,
		ECL31To60: settings.Rate31To60,
		ECL61To90: settings.Rate61To90,
		ECL90Plus: settings.Rate90Plus,
	}
	if !settings.UpdatedAt.IsZero() {
		response.UpdatedAt = settings.UpdatedAt.Format(time.RFC3339)
	}
	return response
}

func mapCalculationToResponse(posted *impairment.PostedCalculation) (CalculationResponse, error) {
	calc := posted.Calculation
	result, err := calc.Result.Preview()
	if err != nil {
		return CalculationResponse{}, err
	}

	response := CalculationResponse{
		CalculationID: calc.ID.String(),
		CalcType:      string(calc.CalcType),
		PeriodEnd:     calc.PeriodEnd.Format(impairment.DateLayout),
		Status:        string(calc.Status),
		Total:         calc.Total,
		Result:        result,
		CreatedBy:     calc.CreatedBy,
		CreatedAt:     calc.CreatedAt.Format(time.RFC3339),
	}
	if posted.Posting != nil {
		response.TransactionID = posted.Posting.TransactionID.String()
	}
	if posted.Transaction != nil {
		response.Transaction = mapTransactionToResponse(posted.Transaction, posted.Lines)
	}
	return response, nil
}

func mapTransactionToResponse(txn *ledger.Transaction, lines []impairment.PostedLine) *TransactionResponse {
	response := &TransactionResponse{
		ID:          txn.ID.String(),
		Date:        txn.Date.Format(impairment.DateLayout),
		Reference:   txn.Reference,
		Description: txn.Description,
		Status:      string(txn.Status),
		Total:       txn.TotalAmount,
		Lines:       make([]TransactionLineResponse, 0, len(lines)),
	}
	for _, line := range lines {
		response.Lines = append(response.Lines, TransactionLineResponse{
			AccountID:     line.Account.ID.String(),
			AccountCode:   line.Account.Code,
			AccountName:   line.Account.Name,
			NormalBalance: string(line.Account.Side()),
			Debit:         line.Entry.Debit,
			Credit:        line.Entry.Credit,
		})
	}
	return response
}

func mapHistoryRecordToResponse(record *history.Record) HistoryRecordResponse {
	return HistoryRecordResponse{
		CalculationID: record.CalculationID.String(),
		TransactionID: record.TransactionID.String(),
		CalcType:      record.CalcType,
		PeriodEnd:     record.PeriodEnd,
		Reference:     record.Reference,
		Total:         record.TotalAmount(),
		ItemCount:     record.ItemCount,
		PostedBy:      record.PostedBy,
		PostedAt:      record.PostedAt.Format(time.RFC3339),
	}
}
