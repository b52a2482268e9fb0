package components

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context, tenantID uuid.UUID) (*impairment.Settings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*impairment.Settings), args.Error(1)
}

func (m *MockSettingsRepo) CreateIfAbsent(ctx context.Context, settings *impairment.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, settings *impairment.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepo) WithTx(tx pgx.Tx) impairment.SettingsRepository {
	args := m.Called(tx)
	return args.Get(0).(impairment.SettingsRepository)
}

func TestSettingsStore_Get(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns stored settings", func(t *testing.T) {
		stored := impairment.DefaultSettings(tenantID)
		stored.Rate90Plus = decimal.RequireFromString("0.75")
		repo := &MockSettingsRepo{}
		repo.On("Get", mock.Anything, tenantID).Return(stored, nil).Once()

		settings, err := NewSettingsStore(repo, slog.Default()).Get(context.Background(), tenantID)
		require.NoError(t, err)
		assert.True(t, settings.Rate90Plus.Equal(decimal.RequireFromString("0.75")))
		repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("creates defaults on first read", func(t *testing.T) {
		repo := &MockSettingsRepo{}
		repo.On("Get", mock.Anything, tenantID).Return(nil, nil).Once()
		repo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(s *impairment.Settings) bool {
			return s.TenantID == tenantID && s.Rate0To30.Equal(impairment.DefaultRate0To30)
		})).Return(nil)
		repo.On("Get", mock.Anything, tenantID).Return(impairment.DefaultSettings(tenantID), nil).Once()

		settings, err := NewSettingsStore(repo, slog.Default()).Get(context.Background(), tenantID)
		require.NoError(t, err)
		assert.True(t, settings.Rate31To60.Equal(impairment.DefaultRate31To60))
		assert.True(t, settings.Rate61To90.Equal(impairment.DefaultRate61To90))
		assert.True(t, settings.Rate90Plus.Equal(impairment.DefaultRate90Plus))
		repo.AssertExpectations(t)
	})

	t.Run("read failure", func(t *testing.T) {
		repo := &MockSettingsRepo{}
		repo.On("Get", mock.Anything, tenantID).Return(nil, errors.New("db error"))

		settings, err := NewSettingsStore(repo, slog.Default()).Get(context.Background(), tenantID)
		assert.Error(t, err)
		assert.Nil(t, settings)
	})
}

func TestSettingsStore_Update(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name        string
		rate90Plus  string
		upsertErr   error
		expectedErr error
		wantUpsert  bool
	}{
		{name: "valid rates", rate90Plus: "1", wantUpsert: true},
		{name: "rate above one", rate90Plus: "1.01", expectedErr: impairment.ErrValidation{}},
		{name: "negative rate", rate90Plus: "-0.1", expectedErr: impairment.ErrValidation{}},
		{name: "store failure", rate90Plus: "0.5", upsertErr: errors.New("db error"), wantUpsert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSettingsRepo{}
			if tt.wantUpsert {
				repo.On("Upsert", mock.Anything, mock.Anything).Return(tt.upsertErr)
			}

			settings := impairment.DefaultSettings(tenantID)
			settings.Rate90Plus = decimal.RequireFromString(tt.rate90Plus)

			updated, err := NewSettingsStore(repo, slog.Default()).Update(context.Background(), settings)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
			case tt.upsertErr != nil:
				assert.ErrorIs(t, err, tt.upsertErr)
			default:
				require.NoError(t, err)
				assert.True(t, updated.Rate90Plus.Equal(decimal.NewFromInt(1)))
				assert.False(t, updated.UpdatedAt.IsZero())
			}
			repo.AssertExpectations(t)
		})
	}
}
