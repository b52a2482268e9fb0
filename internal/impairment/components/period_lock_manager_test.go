package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPeriodLockManager_GetLock(t *testing.T) {
	tenantID := uuid.New()
	periodEnd := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("missing row reads as unlocked", func(t *testing.T) {
		repo := &MockPeriodLockRepo{}
		repo.On("Get", mock.Anything, tenantID, impairment.CalcTypeReceivables, periodEnd).Return(nil, nil)

		lock, err := NewPeriodLockManager(repo, slog.Default()).GetLock(context.Background(), tenantID, impairment.CalcTypeReceivables, periodEnd)
		require.NoError(t, err)
		assert.False(t, lock.Locked)
		assert.Equal(t, impairment.CalcTypeReceivables, lock.Module)
		assert.Equal(t, periodEnd, lock.PeriodEnd)
	})

	t.Run("stored row", func(t *testing.T) {
		repo := &MockPeriodLockRepo{}
		stored := &impairment.PeriodLock{TenantID: tenantID, Module: impairment.CalcTypeAssets, PeriodEnd: periodEnd, Locked: true, UpdatedBy: "controller"}
		repo.On("Get", mock.Anything, tenantID, impairment.CalcTypeAssets, periodEnd).Return(stored, nil)

		lock, err := NewPeriodLockManager(repo, slog.Default()).GetLock(context.Background(), tenantID, impairment.CalcTypeAssets, periodEnd)
		require.NoError(t, err)
		assert.True(t, lock.Locked)
		assert.Equal(t, "controller", lock.UpdatedBy)
	})

	t.Run("unknown module", func(t *testing.T) {
		repo := &MockPeriodLockRepo{}

		lock, err := NewPeriodLockManager(repo, slog.Default()).GetLock(context.Background(), tenantID, impairment.CalcType("payroll"), periodEnd)
		assert.ErrorIs(t, err, impairment.ErrValidation{Field: "module"})
		assert.Nil(t, lock)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPeriodLockManager_SetLock(t *testing.T) {
	tenantID := uuid.New()
	periodEnd := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		module      impairment.CalcType
		upsertErr   error
		expectUpsert bool
		wantErr     bool
	}{
		{name: "locks the period", module: impairment.CalcTypeInventory, expectUpsert: true},
		{name: "unknown module", module: impairment.CalcType("payroll"), wantErr: true},
		{name: "store failure", module: impairment.CalcTypeInventory, upsertErr: errors.New("db error"), expectUpsert: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockPeriodLockRepo{}
			if tt.expectUpsert {
				repo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *impairment.PeriodLock) bool {
					return l.Locked && !l.UpdatedAt.IsZero()
				})).Return(tt.upsertErr)
			}

			lock := &impairment.PeriodLock{TenantID: tenantID, Module: tt.module, PeriodEnd: periodEnd, Locked: true, UpdatedBy: "controller"}
			result, err := NewPeriodLockManager(repo, slog.Default()).SetLock(context.Background(), lock)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.True(t, result.Locked)
			}
			repo.AssertExpectations(t)
		})
	}
}
