package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/domain/ledger"
	"github.com/impairment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PostingServiceImpl struct {
	db       persistence.TxBeginner
	locker   Locker
	guard    PostingGuard
	resolver AccountResolver
	journals JournalWriter
	recorder CalculationRecorder
	outbox   OutboxManager
	logger   *slog.Logger
}

func NewPostingService(
	db persistence.TxBeginner,
	locker Locker,
	guard PostingGuard,
	resolver AccountResolver,
	journals JournalWriter,
	recorder CalculationRecorder,
	outbox OutboxManager,
	logger *slog.Logger,
) PostingService {
	return &PostingServiceImpl{
		db:       db,
		locker:   locker,
		guard:    guard,
		resolver: resolver,
		journals: journals,
		recorder: recorder,
		outbox:   outbox,
		logger:   logger,
	}
}

// Post books the preview for its key. Every step runs in one database
// transaction held under an advisory lock on the key, so a failure leaves
// nothing behind and a concurrent post of the same key sees AlreadyPosted.
func (s *PostingServiceImpl) Post(ctx context.Context, request *PostRequest) (*impairment.PostResult, error) {
	key := request.Key
	logger := s.logger.With(
		"tenant_id", key.TenantID.String(),
		"calc_type", string(key.CalcType),
		"period_end", key.PeriodEnd.Format(impairment.DateLayout),
	)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	if request.Preview == nil || request.Preview.CalcType() != key.CalcType {
		return nil, impairment.ErrValidation{Field: "preview", Reason: "does not match the calculation type"}
	}

	release, err := s.locker.Obtain(ctx, key.String())
	switch {
	case err == nil:
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				logger.Warn("Failed to release post lock", "error", relErr)
			}
		}()
	case errors.Is(err, persistence.ErrLockNotObtained):
		logger.Info("Post lock held by another instance")
		return nil, impairment.ErrPostInProgress{TenantID: key.TenantID, CalcType: key.CalcType, PeriodEnd: key.PeriodEnd}
	default:
		logger.Warn("Post lock unavailable, relying on database lock", "error", err)
	}

	total := request.Preview.Total()
	var result *impairment.PostResult

	err = persistence.RunInTx(ctx, s.db, func(tx pgx.Tx) error {
		// 1. Serialise posts of this key
		if err := s.guard.AcquireKeyLock(ctx, tx, key); err != nil {
			return err
		}

		// 2. Idempotency guard
		if err := s.guard.EnsureNotPosted(ctx, tx, key); err != nil {
			return err
		}

		// 3. Period lock guard
		if err := s.guard.EnsureUnlocked(ctx, tx, key); err != nil {
			return err
		}

		// 4. Nothing to book
		if !total.IsPositive() {
			result = &impairment.PostResult{Posted: false, Total: decimal.Zero}
			return nil
		}

		// 5. Resolve the paired accounts
		pair, err := impairment.AccountsFor(key.CalcType)
		if err != nil {
			return err
		}
		debit, credit, err := s.resolver.ResolvePair(ctx, tx, key.TenantID, pair)
		if err != nil {
			return err
		}

		// 6. Transaction header, entries and ledger rows, then posted
		journal, err := s.journals.WriteJournal(ctx, tx, ledger.JournalRequest{
			TenantID:      key.TenantID,
			Date:          key.PeriodEnd,
			Description:   key.Description(),
			Reference:     key.Reference(),
			Type:          string(key.CalcType),
			Amount:        total,
			DebitAccount:  debit.ID,
			CreditAccount: credit.ID,
			CreatedBy:     request.PostedBy,
		})
		if err != nil {
			return err
		}

		// 7. Calculation snapshot and posting link
		calc, err := s.recorder.RecordCalculation(ctx, tx, request, journal.Transaction.ID)
		if err != nil {
			return err
		}

		// 8. Announce the posting once committed
		if err := s.outbox.CreateOutboxEntry(ctx, tx, request, calc, journal.Transaction); err != nil {
			return err
		}

		transactionID := journal.Transaction.ID
		calculationID := calc.ID
		result = &impairment.PostResult{
			Posted:        true,
			TransactionID: &transactionID,
			CalculationID: &calculationID,
			Total:         total,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, impairment.ErrAlreadyPosted{}) || errors.Is(err, impairment.ErrPeriodLocked{}) {
			logger.Warn("Post rejected", "reason", err.Error())
			return nil, err
		}
		logger.Error("Post failed", "error", err)
		return nil, err
	}

	if result.Posted {
		logger.Info("Impairment posted",
			"transaction_id", result.TransactionID.String(),
			"calculation_id", result.CalculationID.String(),
			"total", result.Total.String(),
		)
	} else {
		logger.Info("Nothing to post", "total", total.String())
	}

	return result, nil
}
