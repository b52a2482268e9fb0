package impairment

import (
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CalculationStatus is the state of a persisted calculation. Previews are never persisted.
type CalculationStatus string

const CalculationStatusPosted CalculationStatus = "posted"

// Calculation is the immutable record of a posted run
type Calculation struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenant_id"`
	CalcType  CalcType          `json:"calc_type"`
	PeriodEnd time.Time         `json:"period_end"`
	Result    Snapshot          `json:"result"`
	Total     decimal.Decimal   `json:"total"`
	Status    CalculationStatus `json:"status"`
	CreatedBy string            `json:"created_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewPostedCalculation freezes a booked preview
func NewPostedCalculation(key Key, preview Preview, createdBy string) *Calculation {
	return &Calculation{
		ID:        uuid.New(),
		TenantID:  key.TenantID,
		CalcType:  key.CalcType,
		PeriodEnd: key.PeriodEnd,
		Result:    NewSnapshot(preview),
		Total:     preview.Total(),
		Status:    CalculationStatusPosted,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}

// Key returns the natural key of the calculation
func (c *Calculation) Key() Key {
	return Key{TenantID: c.TenantID, CalcType: c.CalcType, PeriodEnd: c.PeriodEnd}
}

// Posting links a calculation to the ledger transaction it produced
type Posting struct {
	ID            uuid.UUID `json:"id"`
	CalculationID uuid.UUID `json:"calculation_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostedCalculation is a calculation together with its posting link and the
// ledger transaction it booked
type PostedCalculation struct {
	Calculation *Calculation        `json:"calculation"`
	Posting     *Posting            `json:"posting"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
	Lines       []PostedLine        `json:"lines,omitempty"`
}

// PostedLine is a booked transaction line with the account it hit
type PostedLine struct {
	Entry   *ledger.Entry    `json:"entry"`
	Account *account.Account `json:"account"`
}

// PeriodLock gates postings for a module and period end. No row means unlocked.
type PeriodLock struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Module    CalcType  `json:"module"`
	PeriodEnd time.Time `json:"period_end"`
	Locked    bool      `json:"locked"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostResult is the outcome of a post request
type PostResult struct {
	Posted        bool            `json:"posted"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
	CalculationID *uuid.UUID      `json:"calculation_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
}
