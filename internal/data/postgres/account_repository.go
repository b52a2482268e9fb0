// Package postgres provides PostgreSQL implementations of the domain repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, tenant_id, code, name, type, is_active, normal_balance, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL chart-of-accounts repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.TenantID,
		&acc.Code,
		&acc.Name,
		&acc.Type,
		&acc.IsActive,
		&acc.NormalBalance,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FindByCodes returns the first active account of typ whose code is listed, preferring earlier codes
func (r *AccountRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, typ account.Type, codes []string) (*account.Account, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM chart_of_accounts
		WHERE tenant_id = $1 AND type = $2 AND is_active AND code = ANY($3)
		ORDER BY array_position($3::text[], code::text)
		LIMIT 1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, tenantID, typ, codes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find account by codes", "tenant_id", tenantID.String(), "codes", codes, "error", err)
		return nil, fmt.Errorf("failed to find account by codes: %w", err)
	}

	return acc, nil
}

// FindByNameKeywords returns the oldest active account of typ whose name contains any keyword
func (r *AccountRepository) FindByNameKeywords(ctx context.Context, tenantID uuid.UUID, typ account.Type, keywords []string) (*account.Account, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, "%"+escapeLike(kw)+"%")
	}

	query := `
		SELECT ` + accountColumns + `
		FROM chart_of_accounts
		WHERE tenant_id = $1 AND type = $2 AND is_active AND name ILIKE ANY($3)
		ORDER BY created_at, code
		LIMIT 1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, tenantID, typ, patterns))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find account by name", "tenant_id", tenantID.String(), "keywords", keywords, "error", err)
		return nil, fmt.Errorf("failed to find account by name: %w", err)
	}

	return acc, nil
}

// GetByCode retrieves an account by code regardless of type or status
func (r *AccountRepository) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM chart_of_accounts
		WHERE tenant_id = $1 AND code = $2
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{Code: code}
		}
		r.logger.Error("Failed to get account by code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get account by code: %w", err)
	}

	return acc, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM chart_of_accounts
		WHERE tenant_id = $1 AND id = $2
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{Code: id.String()}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// CreateIfAbsent inserts the account unless (tenant_id, code) is already taken
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, acc *account.Account) (bool, error) {
	query := `
		INSERT INTO chart_of_accounts (id, tenant_id, code, name, type, is_active, normal_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, code) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.TenantID,
		acc.Code,
		acc.Name,
		acc.Type,
		acc.IsActive,
		acc.NormalBalance,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create account", "code", acc.Code, "error", err)
		return false, fmt.Errorf("failed to create account: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
