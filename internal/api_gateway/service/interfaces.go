package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/history"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
)

// TransactionReader reads booked ledger transactions
type TransactionReader interface {
	GetTransactionByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error)
	GetEntriesByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*ledger.Entry, error)
}

// AccountReader reads chart-of-accounts entries
type AccountReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error)
}

// PostCommand is a post request as received from the API
type PostCommand struct {
	Key       impairment.Key
	Estimates impairment.Estimates
	// Preview is the caller's preview; used only when posts do not recompute
	Preview       json.RawMessage
	PostedBy      string
	CorrelationID string
}

// ImpairmentService defines the interface for impairment operations
type ImpairmentService interface {
	// Preview computes a calculation without writing anything
	Preview(ctx context.Context, key impairment.Key, estimates impairment.Estimates) (impairment.Preview, error)

	// Post books the calculation for the key
	// Returns ErrAlreadyPosted or ErrPeriodLocked when the key cannot be posted
	Post(ctx context.Context, cmd *PostCommand) (*impairment.PostResult, error)

	GetSettings(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error)
	UpdateSettings(ctx context.Context, settings *impairment.Settings) (*impairment.Settings, error)

	GetLock(ctx context.Context, tenantID uuid.UUID, module impairment.CalcType, periodEnd time.Time) (*impairment.PeriodLock, error)
	SetLock(ctx context.Context, lock *impairment.PeriodLock) (*impairment.PeriodLock, error)

	// GetCalculation retrieves the posted calculation for the key with its transaction lines
	// Returns ErrCalculationNotFound if the key has not been posted
	GetCalculation(ctx context.Context, key impairment.Key) (*impairment.PostedCalculation, error)
}

// HistoryService defines the interface for posting history reads
type HistoryService interface {
	// GetPostingHistory retrieves a page of the tenant's postings, newest first
	// Returns records, total count of all postings, and any error
	GetPostingHistory(ctx context.Context, tenantID uuid.UUID, page, perPage int) ([]*history.Record, int64, error)
}
