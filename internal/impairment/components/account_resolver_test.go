package components

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/account"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) FindByCodes(ctx context.Context, tenantID uuid.UUID, typ account.Type, codes []string) (*account.Account, error) {
	args := m.Called(ctx, tenantID, typ, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) FindByNameKeywords(ctx context.Context, tenantID uuid.UUID, typ account.Type, keywords []string) (*account.Account, error) {
	args := m.Called(ctx, tenantID, typ, keywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*account.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) CreateIfAbsent(ctx context.Context, acc *account.Account) (bool, error) {
	args := m.Called(ctx, acc)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	return args.Get(0).(account.Repository)
}

func existingAccount(tenantID uuid.UUID, code, name string, typ account.Type) *account.Account {
	return &account.Account{ID: uuid.New(), TenantID: tenantID, Code: code, Name: name, Type: typ, IsActive: true}
}

func TestAccountResolver_ResolveOrCreate(t *testing.T) {
	tenantID := uuid.New()
	spec := impairment.AllowanceForDoubtfulAccounts
	dbError := errors.New("db error")

	tests := []struct {
		name        string
		setupMocks  func(repo *MockAccountRepo)
		expectCode  string
		expectError bool
	}{
		{
			name: "matched by conventional code",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).
					Return(existingAccount(tenantID, "1215", "Doubtful receivables", account.TypeAsset), nil)
			},
			expectCode: "1215",
		},
		{
			name: "matched by name",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, nil)
				repo.On("FindByNameKeywords", mock.Anything, tenantID, account.TypeAsset, spec.NameKeywords).
					Return(existingAccount(tenantID, "1299", "Allowance for credit losses", account.TypeAsset), nil)
			},
			expectCode: "1299",
		},
		{
			name: "created when nothing matches",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, nil)
				repo.On("FindByNameKeywords", mock.Anything, tenantID, account.TypeAsset, spec.NameKeywords).Return(nil, nil)
				repo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(a *account.Account) bool {
					return a.Code == "1190" &&
						a.Name == "Allowance for Doubtful Accounts" &&
						a.Type == account.TypeAsset &&
						a.Side() == account.NormalBalanceCredit &&
						a.IsActive
				})).Return(true, nil)
			},
			expectCode: "1190",
		},
		{
			name: "created concurrently by another post",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, nil)
				repo.On("FindByNameKeywords", mock.Anything, tenantID, account.TypeAsset, spec.NameKeywords).Return(nil, nil)
				repo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
				repo.On("GetByCode", mock.Anything, tenantID, "1190").
					Return(existingAccount(tenantID, "1190", "Allowance for Doubtful Accounts", account.TypeAsset), nil)
			},
			expectCode: "1190",
		},
		{
			name: "code held by an account of another type",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, nil)
				repo.On("FindByNameKeywords", mock.Anything, tenantID, account.TypeAsset, spec.NameKeywords).Return(nil, nil)
				repo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
				repo.On("GetByCode", mock.Anything, tenantID, "1190").
					Return(existingAccount(tenantID, "1190", "Owner loans", account.TypeLiability), nil)
			},
			expectError: true,
		},
		{
			name: "lookup failure",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, dbError)
			},
			expectError: true,
		},
		{
			name: "create failure",
			setupMocks: func(repo *MockAccountRepo) {
				repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, spec.CandidateCodes).Return(nil, nil)
				repo.On("FindByNameKeywords", mock.Anything, tenantID, account.TypeAsset, spec.NameKeywords).Return(nil, nil)
				repo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, dbError)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockAccountRepo{}
			repo.On("WithTx", mock.Anything).Return(repo)
			tt.setupMocks(repo)

			resolver := NewAccountResolver(repo, slog.Default())
			acc, err := resolver.ResolveOrCreate(context.Background(), nil, tenantID, spec)

			if tt.expectError {
				assert.Nil(t, acc)
				assert.ErrorIs(t, err, impairment.ErrAccountResolution{})
				assert.ErrorIs(t, err, impairment.ErrAccountResolution{Code: "1190"})
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectCode, acc.Code)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAccountResolver_ResolvePair(t *testing.T) {
	tenantID := uuid.New()
	pair, err := impairment.AccountsFor(impairment.CalcTypeInventory)
	require.NoError(t, err)

	t.Run("both sides resolved", func(t *testing.T) {
		repo := &MockAccountRepo{}
		repo.On("WithTx", mock.Anything).Return(repo)
		expense := existingAccount(tenantID, "5030", "Inventory Write-down Expense", account.TypeExpense)
		inventory := existingAccount(tenantID, "1300", "Inventory", account.TypeAsset)
		repo.On("FindByCodes", mock.Anything, tenantID, account.TypeExpense, pair.Debit.CandidateCodes).Return(expense, nil)
		repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, pair.Credit.CandidateCodes).Return(inventory, nil)

		debit, credit, err := NewAccountResolver(repo, slog.Default()).ResolvePair(context.Background(), nil, tenantID, pair)
		require.NoError(t, err)
		assert.Equal(t, expense.ID, debit.ID)
		assert.Equal(t, inventory.ID, credit.ID)
		repo.AssertExpectations(t)
	})

	t.Run("credit side fails", func(t *testing.T) {
		repo := &MockAccountRepo{}
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("FindByCodes", mock.Anything, tenantID, account.TypeExpense, pair.Debit.CandidateCodes).
			Return(existingAccount(tenantID, "5030", "Inventory Write-down Expense", account.TypeExpense), nil)
		repo.On("FindByCodes", mock.Anything, tenantID, account.TypeAsset, pair.Credit.CandidateCodes).Return(nil, errors.New("db error"))

		debit, credit, err := NewAccountResolver(repo, slog.Default()).ResolvePair(context.Background(), nil, tenantID, pair)
		assert.Nil(t, debit)
		assert.Nil(t, credit)
		assert.ErrorIs(t, err, impairment.ErrAccountResolution{Code: "1300"})
	})
}
