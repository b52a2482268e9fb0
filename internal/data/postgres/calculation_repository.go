package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// postedCalculationConstraint is the partial unique index enforcing one posting per key
const postedCalculationConstraint = "uq_impairment_calculations_posted"

// CalculationRepository implements the impairment.CalculationRepository interface for PostgreSQL
type CalculationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCalculationRepository creates a new PostgreSQL calculation repository
func NewCalculationRepository(logger *slog.Logger, db *persistence.PostgresDB) impairment.CalculationRepository {
	return &CalculationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *CalculationRepository) WithTx(tx pgx.Tx) impairment.CalculationRepository {
	return &CalculationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// AcquireKeyLock takes a transaction-scoped advisory lock on the natural key
func (r *CalculationRepository) AcquireKeyLock(ctx context.Context, key impairment.Key) error {
	return persistence.AdvisoryXactLock(ctx, r.querier, key.String())
}

// GetPosted returns the posted calculation for key, or nil when there is none
func (r *CalculationRepository) GetPosted(ctx context.Context, key impairment.Key) (*impairment.Calculation, error) {
	query := `
		SELECT id, tenant_id, calc_type, period_end, result, total, status, created_by, created_at
		FROM impairment_calculations
		WHERE tenant_id = $1 AND calc_type = $2 AND period_end = $3 AND status = $4
	`

	var calc impairment.Calculation
	var result []byte
	err := r.querier.QueryRow(ctx, query, key.TenantID, key.CalcType, key.PeriodEnd, impairment.CalculationStatusPosted).Scan(
		&calc.ID,
		&calc.TenantID,
		&calc.CalcType,
		&calc.PeriodEnd,
		&result,
		&calc.Total,
		&calc.Status,
		&calc.CreatedBy,
		&calc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get posted calculation", "key", key.String(), "error", err)
		return nil, fmt.Errorf("failed to get posted calculation: %w", err)
	}

	if err := json.Unmarshal(result, &calc.Result); err != nil {
		return nil, fmt.Errorf("failed to decode calculation snapshot: %w", err)
	}

	return &calc, nil
}

// Create inserts a posted calculation. A concurrent or repeated post of the
// same key violates the partial unique index and is reported as ErrAlreadyPosted.
func (r *CalculationRepository) Create(ctx context.Context, calc *impairment.Calculation) error {
	query := `
		INSERT INTO impairment_calculations (id, tenant_id, calc_type, period_end, result, total, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	result, err := json.Marshal(calc.Result)
	if err != nil {
		return fmt.Errorf("failed to encode calculation snapshot: %w", err)
	}

	_, err = r.querier.Exec(ctx, query,
		calc.ID,
		calc.TenantID,
		calc.CalcType,
		calc.PeriodEnd,
		result,
		calc.Total,
		calc.Status,
		calc.CreatedBy,
		calc.CreatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, postedCalculationConstraint) {
			return impairment.ErrAlreadyPosted{TenantID: calc.TenantID, CalcType: calc.CalcType, PeriodEnd: calc.PeriodEnd}
		}
		r.logger.Error("Failed to create calculation", "key", calc.Key().String(), "error", err)
		return fmt.Errorf("failed to create calculation: %w", err)
	}

	return nil
}

// CreatePosting links a calculation to its ledger transaction
func (r *CalculationRepository) CreatePosting(ctx context.Context, posting *impairment.Posting) error {
	query := `
		INSERT INTO impairment_postings (id, calculation_id, transaction_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query, posting.ID, posting.CalculationID, posting.TransactionID, posting.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create posting", "calculation_id", posting.CalculationID.String(), "error", err)
		return fmt.Errorf("failed to create posting: %w", err)
	}

	return nil
}

// GetPostingByCalculationID retrieves the posting link of a calculation
func (r *CalculationRepository) GetPostingByCalculationID(ctx context.Context, calculationID uuid.UUID) (*impairment.Posting, error) {
	query := `
		SELECT id, calculation_id, transaction_id, created_at
		FROM impairment_postings
		WHERE calculation_id = $1
	`

	var p impairment.Posting
	err := r.querier.QueryRow(ctx, query, calculationID).Scan(&p.ID, &p.CalculationID, &p.TransactionID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get posting", "calculation_id", calculationID.String(), "error", err)
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}

	return &p, nil
}
