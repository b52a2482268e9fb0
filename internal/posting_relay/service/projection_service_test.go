package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/history"
	"github.com/impairment-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, record *history.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetByCalculationID(ctx context.Context, calculationID uuid.UUID) (*history.Record, error) {
	args := m.Called(ctx, calculationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Record), args.Error(1)
}

func (m *MockHistoryRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*history.Record, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Record), args.Error(1)
}

func (m *MockHistoryRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func newPostedEvent() *shared.ImpairmentPostedEvent {
	return &shared.ImpairmentPostedEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypeImpairmentPosted,
		TenantID:      uuid.New(),
		CalcType:      "receivables",
		PeriodEnd:     "2024-03-31",
		CalculationID: uuid.New(),
		TransactionID: uuid.New(),
		Reference:     "IMP-REC-20240331",
		Total:         decimal.RequireFromString("40.00"),
		ItemCount:     1,
		CorrelationID: "corr-1",
		PostedAt:      time.Now(),
	}
}

func TestProjectionService_Project(t *testing.T) {
	logger := slog.Default()
	event := newPostedEvent()

	tests := []struct {
		name          string
		setupMocks    func(repo *MockHistoryRepository)
		expectedError string
	}{
		{
			name: "projects new event",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(r *history.Record) bool {
					return r.EventID == event.EventID &&
						r.CalculationID == event.CalculationID &&
						r.Reference == "IMP-REC-20240331" &&
						r.TotalAmount().Equal(decimal.NewFromInt(40))
				})).Return(nil).Once()
			},
		},
		{
			name: "already projected event is skipped",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(history.ErrDuplicateRecord{EventID: event.EventID}).Once()
			},
		},
		{
			name: "store failure is returned",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo timeout")).Once()
			},
			expectedError: "failed to project event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockHistoryRepository)
			tt.setupMocks(repo)
			svc := NewProjectionService(repo, logger)

			err := svc.Project(context.Background(), event)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
