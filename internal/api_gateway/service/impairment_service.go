package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	engine "github.com/impairment-ledger/internal/impairment/service"
)

// ImpairmentServiceImpl implements the ImpairmentService interface
type ImpairmentServiceImpl struct {
	posting         engine.PostingService
	previews        engine.PreviewBuilder
	settings        engine.SettingsStore
	locks           engine.PeriodLockManager
	calcRepo        impairment.CalculationRepository
	transactions    TransactionReader
	accounts        AccountReader
	recomputeOnPost bool
	logger          *slog.Logger
}

// NewImpairmentService creates a new impairment service
func NewImpairmentService(
	logger *slog.Logger,
	posting engine.PostingService,
	previews engine.PreviewBuilder,
	settings engine.SettingsStore,
	locks engine.PeriodLockManager,
	calcRepo impairment.CalculationRepository,
	transactions TransactionReader,
	accounts AccountReader,
	recomputeOnPost bool,
) ImpairmentService {
	return &ImpairmentServiceImpl{
		posting:         posting,
		previews:        previews,
		settings:        settings,
		locks:           locks,
		calcRepo:        calcRepo,
		transactions:    transactions,
		accounts:        accounts,
		recomputeOnPost: recomputeOnPost,
		logger:          logger,
	}
}

func (s *ImpairmentServiceImpl) Preview(ctx context.Context, key impairment.Key, estimates impairment.Estimates) (impairment.Preview, error) {
	return s.previews.Build(ctx, key, estimates)
}

// Post resolves the preview to book and hands it to the posting engine. With
// recompute enabled, or when the caller sent no preview, the preview is rebuilt
// from current records and settings.
func (s *ImpairmentServiceImpl) Post(ctx context.Context, cmd *PostCommand) (*impairment.PostResult, error) {
	var (
		preview impairment.Preview
		err     error
	)
	if s.recomputeOnPost || len(cmd.Preview) == 0 {
		preview, err = s.previews.Build(ctx, cmd.Key, cmd.Estimates)
	} else {
		preview, err = impairment.DecodePreview(cmd.Key.CalcType, cmd.Preview)
	}
	if err != nil {
		return nil, err
	}

	return s.posting.Post(ctx, &engine.PostRequest{
		Key:           cmd.Key,
		Preview:       preview,
		PostedBy:      cmd.PostedBy,
		CorrelationID: cmd.CorrelationID,
	})
}

func (s *ImpairmentServiceImpl) GetSettings(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error) {
	return s.settings.Get(ctx, tenantID)
}

func (s *ImpairmentServiceImpl) UpdateSettings(ctx context.Context, settings *impairment.Settings) (*impairment.Settings, error) {
	return s.settings.Update(ctx, settings)
}

func (s *ImpairmentServiceImpl) GetLock(ctx context.Context, tenantID uuid.UUID, module impairment.CalcType, periodEnd time.Time) (*impairment.PeriodLock, error) {
	return s.locks.GetLock(ctx, tenantID, module, periodEnd)
}

func (s *ImpairmentServiceImpl) SetLock(ctx context.Context, lock *impairment.PeriodLock) (*impairment.PeriodLock, error) {
	return s.locks.SetLock(ctx, lock)
}

// GetCalculation retrieves the posted calculation, its posting link and the
// booked transaction with the account of each line
func (s *ImpairmentServiceImpl) GetCalculation(ctx context.Context, key impairment.Key) (*impairment.PostedCalculation, error) {
	calc, err := s.calcRepo.GetPosted(ctx, key)
	if err != nil {
		s.logger.Error("Failed to get posted calculation", "key", key.String(), "error", err)
		return nil, err
	}
	if calc == nil {
		s.logger.Info("Posted calculation not found", "key", key.String())
		return nil, impairment.ErrCalculationNotFound{CalcType: key.CalcType, PeriodEnd: key.PeriodEnd}
	}

	posting, err := s.calcRepo.GetPostingByCalculationID(ctx, calc.ID)
	if err != nil {
		s.logger.Error("Failed to get posting link", "calculation_id", calc.ID.String(), "error", err)
		return nil, err
	}

	posted := &impairment.PostedCalculation{Calculation: calc, Posting: posting}
	if posting == nil {
		return posted, nil
	}

	txn, err := s.transactions.GetTransactionByID(ctx, key.TenantID, posting.TransactionID)
	if err != nil {
		s.logger.Error("Failed to get posted transaction", "transaction_id", posting.TransactionID.String(), "error", err)
		return nil, err
	}
	entries, err := s.transactions.GetEntriesByTransactionID(ctx, txn.ID)
	if err != nil {
		s.logger.Error("Failed to get posted transaction lines", "transaction_id", txn.ID.String(), "error", err)
		return nil, err
	}

	lines := make([]impairment.PostedLine, 0, len(entries))
	for _, entry := range entries {
		acc, err := s.accounts.GetByID(ctx, key.TenantID, entry.AccountID)
		if err != nil {
			s.logger.Error("Failed to get account of posted line", "account_id", entry.AccountID.String(), "error", err)
			return nil, err
		}
		lines = append(lines, impairment.PostedLine{Entry: entry, Account: acc})
	}

	posted.Transaction = txn
	posted.Lines = lines
	return posted, nil
}
