package components

import (
	"context"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/jackc/pgx/v5"
)

type JournalWriterImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewJournalWriter(ledgerRepo ledger.Repository, logger *slog.Logger) service.JournalWriter {
	return &JournalWriterImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// WriteJournal inserts a pending transaction with its two entries and ledger
// rows, then moves it to posted.
func (w *JournalWriterImpl) WriteJournal(ctx context.Context, tx pgx.Tx, request ledger.JournalRequest) (*ledger.Journal, error) {
	journal, err := ledger.NewJournal(request)
	if err != nil {
		return nil, err
	}

	ledgerRepoTx := w.ledgerRepo.WithTx(tx)

	if err := ledgerRepoTx.CreateTransaction(ctx, journal.Transaction); err != nil {
		return nil, err
	}
	for _, entry := range journal.Entries {
		if err := ledgerRepoTx.CreateEntry(ctx, entry); err != nil {
			return nil, err
		}
	}
	for _, entry := range journal.LedgerEntries {
		if err := ledgerRepoTx.CreateLedgerEntry(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := ledgerRepoTx.UpdateTransactionStatus(ctx, journal.Transaction.ID, ledger.TransactionStatusPosted); err != nil {
		return nil, err
	}
	journal.MarkPosted()

	w.logger.Info("Journal written",
		"transaction_id", journal.Transaction.ID.String(),
		"reference", journal.Transaction.Reference,
		"amount", journal.Transaction.TotalAmount.String(),
	)
	return journal, nil
}
