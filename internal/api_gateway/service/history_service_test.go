package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/history"
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

func TestHistoryServiceImpl_GetPostingHistory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockHistoryRepository)
		service := NewHistoryService(logger, mockRepo)
		page, perPage := 2, 5
		expectedOffset := (page - 1) * perPage

		records := []*history.Record{
			{EventID: uuid.New(), TenantID: tenantID, CalcType: "receivables", PeriodEnd: "2024-06-30", PostedAt: time.Now()},
			{EventID: uuid.New(), TenantID: tenantID, CalcType: "assets", PeriodEnd: "2024-03-31", PostedAt: time.Now().Add(-time.Hour)},
		}
		mockRepo.On("ListByTenant", ctx, tenantID, perPage, expectedOffset).Return(records, nil).Once()
		mockRepo.On("CountByTenant", ctx, tenantID).Return(int64(7), nil).Once()

		actual, total, err := service.GetPostingHistory(ctx, tenantID, page, perPage)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), total)
		assert.Equal(t, records, actual)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ListError", func(t *testing.T) {
		mockRepo := new(MockHistoryRepository)
		service := NewHistoryService(logger, mockRepo)
		listErr := errors.New("mongo unavailable")
		mockRepo.On("ListByTenant", ctx, tenantID, 10, 0).Return(nil, listErr).Once()

		actual, total, err := service.GetPostingHistory(ctx, tenantID, 1, 10)

		assert.ErrorIs(t, err, listErr)
		assert.Nil(t, actual)
		assert.Zero(t, total)
		mockRepo.AssertNotCalled(t, "CountByTenant", mock.Anything, mock.Anything)
	})

	t.Run("CountError", func(t *testing.T) {
		mockRepo := new(MockHistoryRepository)
		service := NewHistoryService(logger, mockRepo)
		countErr := errors.New("count failed")
		mockRepo.On("ListByTenant", ctx, tenantID, 10, 0).Return([]*history.Record{}, nil).Once()
		mockRepo.On("CountByTenant", ctx, tenantID).Return(int64(0), countErr).Once()

		actual, total, err := service.GetPostingHistory(ctx, tenantID, 1, 10)

		assert.ErrorIs(t, err, countErr)
		assert.Nil(t, actual)
		assert.Zero(t, total)
	})
}
