package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PostingService books impairment previews to the general ledger
type PostingService interface {
	Post(ctx context.Context, request *PostRequest) (*impairment.PostResult, error)
}

// PostRequest is a preview to book for a natural key
type PostRequest struct {
	Key           impairment.Key
	Preview       impairment.Preview
	PostedBy      string
	CorrelationID string
}

// Locker hands out best-effort cross-instance locks
type Locker interface {
	Obtain(ctx context.Context, key string) (persistence.ReleaseFunc, error)
}

// PostingGuard serialises posts of a key and rejects posted or locked keys
type PostingGuard interface {
	AcquireKeyLock(ctx context.Context, tx pgx.Tx, key impairment.Key) error
	EnsureNotPosted(ctx context.Context, tx pgx.Tx, key impairment.Key) error
	EnsureUnlocked(ctx context.Context, tx pgx.Tx, key impairment.Key) error
}

// AccountResolver finds or provisions the ledger accounts of a posting
type AccountResolver interface {
	ResolveOrCreate(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, spec impairment.AccountSpec) (*account.Account, error)
	ResolvePair(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, pair impairment.AccountPair) (debit, credit *account.Account, err error)
}

// JournalWriter writes a balanced two-line journal and marks it posted
type JournalWriter interface {
	WriteJournal(ctx context.Context, tx pgx.Tx, request ledger.JournalRequest) (*ledger.Journal, error)
}

// CalculationRecorder stores the booked snapshot and its posting link
type CalculationRecorder interface {
	RecordCalculation(ctx context.Context, tx pgx.Tx, request *PostRequest, transactionID uuid.UUID) (*impairment.Calculation, error)
}

// OutboxManager queues the posted event in the posting transaction
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *PostRequest, calc *impairment.Calculation, txn *ledger.Transaction) error
}

// SettingsStore reads and updates tenant ECL settings
type SettingsStore interface {
	// Get returns the tenant's settings, creating the defaults on first read
	Get(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error)
	Update(ctx context.Context, settings *impairment.Settings) (*impairment.Settings, error)
}

// PeriodLockManager reads and sets period locks
type PeriodLockManager interface {
	GetLock(ctx context.Context, tenantID uuid.UUID, module impairment.CalcType, periodEnd time.Time) (*impairment.PeriodLock, error)
	SetLock(ctx context.Context, lock *impairment.PeriodLock) (*impairment.PeriodLock, error)
}

// PreviewBuilder runs a calculator over the tenant's current records
type PreviewBuilder interface {
	Build(ctx context.Context, key impairment.Key, estimates impairment.Estimates) (impairment.Preview, error)
}
