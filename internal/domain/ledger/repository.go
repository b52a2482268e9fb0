package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists general ledger transactions, their entries and ledger rows
type Repository interface {
	CreateTransaction(ctx context.Context, txn *Transaction) error
	CreateEntry(ctx context.Context, entry *Entry) error
	CreateLedgerEntry(ctx context.Context, entry *LedgerEntry) error
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status TransactionStatus) error
	GetTransactionByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	GetEntriesByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*Entry, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing ledger transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "ledger transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// If the target TransactionID is empty, consider it a match for any ErrTransactionNotFound
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
