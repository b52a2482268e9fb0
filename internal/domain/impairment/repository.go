package impairment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CalculationRepository persists posted calculations and their posting links
type CalculationRepository interface {
	// GetPosted returns the posted calculation for the key, or nil, nil when none exists
	GetPosted(ctx context.Context, key Key) (*Calculation, error)

	// Create inserts a posted calculation; a duplicate natural key yields ErrAlreadyPosted
	Create(ctx context.Context, calc *Calculation) error

	CreatePosting(ctx context.Context, posting *Posting) error
	GetPostingByCalculationID(ctx context.Context, calculationID uuid.UUID) (*Posting, error)

	// AcquireKeyLock serialises posts of the same key until the transaction ends
	AcquireKeyLock(ctx context.Context, key Key) error
	WithTx(tx pgx.Tx) CalculationRepository
}

// SettingsRepository persists per-tenant ECL settings
type SettingsRepository interface {
	// Get returns the tenant's settings, or nil, nil when none exist
	Get(ctx context.Context, tenantID uuid.UUID) (*Settings, error)

	// CreateIfAbsent inserts settings unless the tenant already has a row
	CreateIfAbsent(ctx context.Context, settings *Settings) error

	Upsert(ctx context.Context, settings *Settings) error
	WithTx(tx pgx.Tx) SettingsRepository
}

// PeriodLockRepository persists period locks
type PeriodLockRepository interface {
	// Get returns the lock row, or nil, nil when none exists
	Get(ctx context.Context, tenantID uuid.UUID, module CalcType, periodEnd time.Time) (*PeriodLock, error)
	Upsert(ctx context.Context, lock *PeriodLock) error
	WithTx(tx pgx.Tx) PeriodLockRepository
}
