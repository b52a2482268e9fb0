package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/impairment-ledger/internal/impairment/service"
	"github.com/jackc/pgx/v5"
)

type CalculationRecorderImpl struct {
	calcRepo impairment.CalculationRepository
	logger   *slog.Logger
}

func NewCalculationRecorder(calcRepo impairment.CalculationRepository, logger *slog.Logger) service.CalculationRecorder {
	return &CalculationRecorderImpl{
		calcRepo: calcRepo,
		logger:   logger,
	}
}

// RecordCalculation freezes the booked preview and links it to its transaction
func (r *CalculationRecorderImpl) RecordCalculation(ctx context.Context, tx pgx.Tx, request *service.PostRequest, transactionID uuid.UUID) (*impairment.Calculation, error) {
	calcRepoTx := r.calcRepo.WithTx(tx)

	calc := impairment.NewPostedCalculation(request.Key, request.Preview, request.PostedBy)
	if err := calcRepoTx.Create(ctx, calc); err != nil {
		return nil, err
	}

	posting := &impairment.Posting{
		ID:            uuid.New(),
		CalculationID: calc.ID,
		TransactionID: transactionID,
		CreatedAt:     time.Now(),
	}
	if err := calcRepoTx.CreatePosting(ctx, posting); err != nil {
		return nil, err
	}

	r.logger.Debug("Calculation recorded", "calculation_id", calc.ID.String(), "transaction_id", transactionID.String())
	return calc, nil
}
