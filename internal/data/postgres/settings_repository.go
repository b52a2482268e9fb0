package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the impairment.SettingsRepository interface for PostgreSQL
type SettingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSettingsRepository creates a new PostgreSQL ECL settings repository
func NewSettingsRepository(logger *slog.Logger, db *persistence.PostgresDB) impairment.SettingsRepository {
	return &SettingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *SettingsRepository) WithTx(tx pgx.Tx) impairment.SettingsRepository {
	return &SettingsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Get returns the tenant's settings, or nil when the tenant has none
func (r *SettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error) {
	query := `
		SELECT tenant_id, ecl_0_30, ecl_31_60, ecl_61_90, ecl_90_plus, updated_at
		FROM impairment_settings
		WHERE tenant_id = $1
	`

	var s impairment.Settings
	err := r.querier.QueryRow(ctx, query, tenantID).Scan(
		&s.TenantID,
		&s.Rate0To30,
		&s.Rate31To60,
		&s.Rate61To90,
		&s.Rate90Plus,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get impairment settings", "tenant_id", tenantID.String(), "error", err)
		return nil, fmt.Errorf("failed to get impairment settings: %w", err)
	}

	return &s, nil
}

// CreateIfAbsent inserts settings, leaving an existing row untouched
func (r *SettingsRepository) CreateIfAbsent(ctx context.Context, s *impairment.Settings) error {
	query := `
		INSERT INTO impairment_settings (tenant_id, ecl_0_30, ecl_31_60, ecl_61_90, ecl_90_plus, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query, s.TenantID, s.Rate0To30, s.Rate31To60, s.Rate61To90, s.Rate90Plus, s.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create impairment settings", "tenant_id", s.TenantID.String(), "error", err)
		return fmt.Errorf("failed to create impairment settings: %w", err)
	}

	return nil
}

// Upsert writes the tenant's settings
func (r *SettingsRepository) Upsert(ctx context.Context, s *impairment.Settings) error {
	query := `
		INSERT INTO impairment_settings (tenant_id, ecl_0_30, ecl_31_60, ecl_61_90, ecl_90_plus, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id) DO UPDATE
		SET ecl_0_30 = EXCLUDED.ecl_0_30,
			ecl_31_60 = EXCLUDED.ecl_31_60,
			ecl_61_90 = EXCLUDED.ecl_61_90,
			ecl_90_plus = EXCLUDED.ecl_90_plus,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier.Exec(ctx, query, s.TenantID, s.Rate0To30, s.Rate31To60, s.Rate61To90, s.Rate90Plus, s.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to save impairment settings", "tenant_id", s.TenantID.String(), "error", err)
		return fmt.Errorf("failed to save impairment settings: %w", err)
	}

	return nil
}
