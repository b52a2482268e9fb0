package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines chart-of-accounts persistence operations
type Repository interface {
	// FindByCodes returns the first active account of the given type whose code
	// is in codes, honouring the order of codes. Returns nil, nil when none match.
	FindByCodes(ctx context.Context, tenantID uuid.UUID, typ Type, codes []string) (*Account, error)

	// FindByNameKeywords returns the oldest active account of the given type whose
	// name contains any of the keywords, case-insensitively. Returns nil, nil when none match.
	FindByNameKeywords(ctx context.Context, tenantID uuid.UUID, typ Type, keywords []string) (*Account, error)

	// GetByCode looks an account up by its code regardless of type or status.
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)

	// CreateIfAbsent inserts the account unless the code is already taken.
	// The boolean reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, account *Account) (bool, error)

	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	Code string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.Code
}

// Is matches any ErrAccountNotFound when the target code is empty
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}
