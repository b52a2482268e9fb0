package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("journal amount must be positive")
	ErrSameAccount       = errors.New("debit and credit accounts must differ")
	ErrUnbalanced        = errors.New("journal debits do not equal credits")
	ErrOneSidedLine      = errors.New("journal line must carry exactly one of debit or credit")
)

// TransactionStatus defines general ledger transaction states
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPosted  TransactionStatus = "posted"
)

// Transaction is a general ledger transaction header
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Type        string            `json:"type"`
	Status      TransactionStatus `json:"status"`
	CreatedBy   string            `json:"created_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Entry is one line of a transaction. Exactly one of Debit or Credit is non-zero.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`
}

// LedgerEntry mirrors an Entry in the account ledger, dated with the transaction date.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	EntryDate     time.Time       `json:"entry_date"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (e *Entry) oneSided() bool {
	return e.Debit.IsZero() != e.Credit.IsZero() && !e.Debit.IsNegative() && !e.Credit.IsNegative()
}
