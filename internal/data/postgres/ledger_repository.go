package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL general ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateTransaction inserts a transaction header
func (r *LedgerRepository) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (id, tenant_id, date, description, reference, total_amount, type, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.TenantID,
		txn.Date,
		txn.Description,
		txn.Reference,
		txn.TotalAmount,
		txn.Type,
		txn.Status,
		txn.CreatedBy,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// CreateEntry inserts a transaction line
func (r *LedgerRepository) CreateEntry(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO transaction_entries (id, transaction_id, account_id, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.TransactionID,
		entry.AccountID,
		entry.Debit,
		entry.Credit,
		entry.Description,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction entry", "transaction_id", entry.TransactionID.String(), "error", err)
		return fmt.Errorf("failed to create transaction entry: %w", err)
	}

	return nil
}

// CreateLedgerEntry inserts the account ledger row mirroring a transaction line
func (r *LedgerRepository) CreateLedgerEntry(ctx context.Context, entry *ledger.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, tenant_id, transaction_id, account_id, entry_date, debit, credit, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.TransactionID,
		entry.AccountID,
		entry.EntryDate,
		entry.Debit,
		entry.Credit,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry", "transaction_id", entry.TransactionID.String(), "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// UpdateTransactionStatus moves a transaction to status
func (r *LedgerRepository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status ledger.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET status = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update transaction status", "transaction_id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// GetTransactionByID retrieves a tenant's transaction header
func (r *LedgerRepository) GetTransactionByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	query := `
		SELECT id, tenant_id, date, description, reference, total_amount, type, status, created_by, created_at
		FROM transactions
		WHERE tenant_id = $1 AND id = $2
	`

	var txn ledger.Transaction
	err := r.querier.QueryRow(ctx, query, tenantID, id).Scan(
		&txn.ID,
		&txn.TenantID,
		&txn.Date,
		&txn.Description,
		&txn.Reference,
		&txn.TotalAmount,
		&txn.Type,
		&txn.Status,
		&txn.CreatedBy,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}

// GetEntriesByTransactionID lists the lines of a transaction, debits first
func (r *LedgerRepository) GetEntriesByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*ledger.Entry, error) {
	query := `
		SELECT id, transaction_id, account_id, debit, credit, description
		FROM transaction_entries
		WHERE transaction_id = $1
		ORDER BY debit DESC, id
	`

	rows, err := r.querier.Query(ctx, query, transactionID)
	if err != nil {
		r.logger.Error("Failed to get transaction entries", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Debit, &e.Credit, &e.Description); err != nil {
			r.logger.Error("Failed to scan transaction entry", "error", err)
			return nil, fmt.Errorf("failed to scan transaction entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction entries: %w", err)
	}

	return entries, nil
}
