package components

import (
	"context"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/jackc/pgx/v5"
)

type PostingGuardImpl struct {
	calcRepo impairment.CalculationRepository
	lockRepo impairment.PeriodLockRepository
	logger   *slog.Logger
}

func NewPostingGuard(calcRepo impairment.CalculationRepository, lockRepo impairment.PeriodLockRepository, logger *slog.Logger) service.PostingGuard {
	return &PostingGuardImpl{
		calcRepo: calcRepo,
		lockRepo: lockRepo,
		logger:   logger,
	}
}

// AcquireKeyLock blocks until no other transaction holds the key
func (g *PostingGuardImpl) AcquireKeyLock(ctx context.Context, tx pgx.Tx, key impairment.Key) error {
	return g.calcRepo.WithTx(tx).AcquireKeyLock(ctx, key)
}

// EnsureNotPosted fails with ErrAlreadyPosted when the key has a posted calculation
func (g *PostingGuardImpl) EnsureNotPosted(ctx context.Context, tx pgx.Tx, key impairment.Key) error {
	existing, err := g.calcRepo.WithTx(tx).GetPosted(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		g.logger.Info("Calculation already posted", "key", key.String(), "calculation_id", existing.ID.String())
		return impairment.ErrAlreadyPosted{TenantID: key.TenantID, CalcType: key.CalcType, PeriodEnd: key.PeriodEnd}
	}
	return nil
}

// EnsureUnlocked fails with ErrPeriodLocked when the period is locked for the module
func (g *PostingGuardImpl) EnsureUnlocked(ctx context.Context, tx pgx.Tx, key impairment.Key) error {
	lock, err := g.lockRepo.WithTx(tx).Get(ctx, key.TenantID, key.CalcType, key.PeriodEnd)
	if err != nil {
		return err
	}
	if lock != nil && lock.Locked {
		return impairment.ErrPeriodLocked{TenantID: key.TenantID, CalcType: key.CalcType, PeriodEnd: key.PeriodEnd}
	}
	return nil
}
