package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/impairment/service"
)

type PeriodLockManagerImpl struct {
	lockRepo impairment.PeriodLockRepository
	logger   *slog.Logger
}

func NewPeriodLockManager(lockRepo impairment.PeriodLockRepository, logger *slog.Logger) service.PeriodLockManager {
	return &PeriodLockManagerImpl{
		lockRepo: lockRepo,
		logger:   logger,
	}
}

// GetLock returns the lock state. A missing row is reported as unlocked.
func (m *PeriodLockManagerImpl) GetLock(ctx context.Context, tenantID uuid.UUID, module impairment.CalcType, periodEnd time.Time) (*impairment.PeriodLock, error) {
	if !module.Valid() {
		return nil, impairment.ErrValidation{Field: "module", Reason: "must be one of receivables, assets, inventory"}
	}

	lock, err := m.lockRepo.Get(ctx, tenantID, module, periodEnd)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return &impairment.PeriodLock{TenantID: tenantID, Module: module, PeriodEnd: periodEnd, Locked: false}, nil
	}
	return lock, nil
}

// SetLock inserts or updates the lock row
func (m *PeriodLockManagerImpl) SetLock(ctx context.Context, lock *impairment.PeriodLock) (*impairment.PeriodLock, error) {
	if !lock.Module.Valid() {
		return nil, impairment.ErrValidation{Field: "module", Reason: "must be one of receivables, assets, inventory"}
	}
	lock.UpdatedAt = time.Now()

	if err := m.lockRepo.Upsert(ctx, lock); err != nil {
		return nil, err
	}
	m.logger.Info("Period lock set",
		"tenant_id", lock.TenantID.String(),
		"module", string(lock.Module),
		"period_end", lock.PeriodEnd.Format(impairment.DateLayout),
		"locked", lock.Locked,
		"updated_by", lock.UpdatedBy,
	)
	return lock, nil
}
