package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PeriodLockRepository implements the impairment.PeriodLockRepository interface for PostgreSQL
type PeriodLockRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPeriodLockRepository creates a new PostgreSQL period lock repository
func NewPeriodLockRepository(logger *slog.Logger, db *persistence.PostgresDB) impairment.PeriodLockRepository {
	return &PeriodLockRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *PeriodLockRepository) WithTx(tx pgx.Tx) impairment.PeriodLockRepository {
	return &PeriodLockRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Get returns the lock row for a module and period end, or nil when none exists
func (r *PeriodLockRepository) Get(ctx context.Context, tenantID uuid.UUID, module impairment.CalcType, periodEnd time.Time) (*impairment.PeriodLock, error) {
	query := `
		SELECT tenant_id, module, period_end, locked, updated_by, updated_at
		FROM period_locks
		WHERE tenant_id = $1 AND module = $2 AND period_end = $3
	`

	var l impairment.PeriodLock
	err := r.querier.QueryRow(ctx, query, tenantID, module, periodEnd).Scan(
		&l.TenantID,
		&l.Module,
		&l.PeriodEnd,
		&l.Locked,
		&l.UpdatedBy,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get period lock",
			"tenant_id", tenantID.String(),
			"module", string(module),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get period lock: %w", err)
	}

	return &l, nil
}

// Upsert sets the lock state for a module and period end
func (r *PeriodLockRepository) Upsert(ctx context.Context, l *impairment.PeriodLock) error {
	query := `
		INSERT INTO period_locks (tenant_id, module, period_end, locked, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, module, period_end) DO UPDATE
		SET locked = EXCLUDED.locked,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier.Exec(ctx, query, l.TenantID, l.Module, l.PeriodEnd, l.Locked, l.UpdatedBy, l.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to save period lock",
			"tenant_id", l.TenantID.String(),
			"module", string(l.Module),
			"error", err,
		)
		return fmt.Errorf("failed to save period lock: %w", err)
	}

	return nil
}
