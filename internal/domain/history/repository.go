package history

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages posting history with pagination support
type Repository interface {
	// Create inserts a record; a record with the same event id yields ErrDuplicateRecord
	Create(ctx context.Context, record *Record) error
	GetByCalculationID(ctx context.Context, calculationID uuid.UUID) (*Record, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ErrRecordNotFound indicates missing history record
type ErrRecordNotFound struct {
	CalculationID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "posting history record not found: " + e.CalculationID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.CalculationID == uuid.Nil {
		return true
	}
	return e.CalculationID == t.CalculationID
}

// ErrDuplicateRecord indicates the event was already projected
type ErrDuplicateRecord struct {
	EventID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate posting history record: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrDuplicateRecord
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}
