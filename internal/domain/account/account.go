package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyCode     = errors.New("account code cannot be empty")
	ErrEmptyName     = errors.New("account name cannot be empty")
	ErrInvalidType   = errors.New("account type must be one of asset, liability, equity, revenue, expense")
	ErrMissingTenant = errors.New("tenant id is required")
)

// Type classifies a chart-of-accounts entry
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
)

// Valid reports whether t is a known account type
func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account's balance normally increases
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "debit"
	NormalBalanceCredit NormalBalance = "credit"
)

// Account is a tenant-scoped chart-of-accounts entry
type Account struct {
	ID            uuid.UUID      `json:"id"`
	TenantID      uuid.UUID      `json:"tenant_id"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Type          Type           `json:"type"`
	IsActive      bool           `json:"is_active"`
	NormalBalance *NormalBalance `json:"normal_balance,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewAccount creates an active account. normalBalance may be nil, in which case
// the account follows the default side for its type.
func NewAccount(tenantID uuid.UUID, code, name string, typ Type, normalBalance *NormalBalance) (*Account, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !typ.Valid() {
		return nil, ErrInvalidType
	}

	now := time.Now()
	return &Account{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Code:          code,
		Name:          name,
		Type:          typ,
		IsActive:      true,
		NormalBalance: normalBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Side returns the explicit normal balance or the conventional one for the type.
func (a *Account) Side() NormalBalance {
	if a.NormalBalance != nil {
		return *a.NormalBalance
	}
	switch a.Type {
	case TypeAsset, TypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// Usable reports whether the account can receive postings of the given type.
func (a *Account) Usable(typ Type) bool {
	return a.IsActive && a.Type == typ
}
