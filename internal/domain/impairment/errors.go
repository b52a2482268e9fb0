package impairment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTenantNotFound   = errors.New("no tenant associated with the caller")
)

// ErrAlreadyPosted indicates a posted calculation already exists for the key
type ErrAlreadyPosted struct {
	TenantID  uuid.UUID
	CalcType  CalcType
	PeriodEnd time.Time
}

func (e ErrAlreadyPosted) Error() string {
	return fmt.Sprintf("%s impairment already posted for period ending %s", e.CalcType, e.PeriodEnd.Format(DateLayout))
}

// Is matches any ErrAlreadyPosted when the target carries no calculation type
func (e ErrAlreadyPosted) Is(target error) bool {
	t, ok := target.(ErrAlreadyPosted)
	if !ok {
		return false
	}
	if t.CalcType == "" {
		return true
	}
	return sameKey(e.TenantID, e.CalcType, e.PeriodEnd, t.TenantID, t.CalcType, t.PeriodEnd)
}

// ErrPeriodLocked indicates the period is locked for the module
type ErrPeriodLocked struct {
	TenantID  uuid.UUID
	CalcType  CalcType
	PeriodEnd time.Time
}

func (e ErrPeriodLocked) Error() string {
	return fmt.Sprintf("period ending %s is locked for %s", e.PeriodEnd.Format(DateLayout), e.CalcType)
}

// Is matches any ErrPeriodLocked when the target carries no calculation type
func (e ErrPeriodLocked) Is(target error) bool {
	t, ok := target.(ErrPeriodLocked)
	if !ok {
		return false
	}
	if t.CalcType == "" {
		return true
	}
	return sameKey(e.TenantID, e.CalcType, e.PeriodEnd, t.TenantID, t.CalcType, t.PeriodEnd)
}

// ErrPostInProgress indicates another instance is posting the same key
type ErrPostInProgress struct {
	TenantID  uuid.UUID
	CalcType  CalcType
	PeriodEnd time.Time
}

func (e ErrPostInProgress) Error() string {
	return fmt.Sprintf("%s impairment for period ending %s is being posted, retry shortly", e.CalcType, e.PeriodEnd.Format(DateLayout))
}

// Is matches any ErrPostInProgress when the target carries no calculation type
func (e ErrPostInProgress) Is(target error) bool {
	t, ok := target.(ErrPostInProgress)
	if !ok {
		return false
	}
	if t.CalcType == "" {
		return true
	}
	return sameKey(e.TenantID, e.CalcType, e.PeriodEnd, t.TenantID, t.CalcType, t.PeriodEnd)
}

// ErrAccountResolution indicates a ledger account could not be found or created
type ErrAccountResolution struct {
	Code string
	Name string
	Err  error
}

func (e ErrAccountResolution) Error() string {
	msg := fmt.Sprintf("could not resolve ledger account %s (%s)", e.Code, e.Name)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ErrAccountResolution) Unwrap() error {
	return e.Err
}

// Is matches any ErrAccountResolution when the target code is empty
func (e ErrAccountResolution) Is(target error) bool {
	t, ok := target.(ErrAccountResolution)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// ErrValidation indicates malformed input
type ErrValidation struct {
	Field  string
	Reason string
}

func (e ErrValidation) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Is matches any ErrValidation when the target field is empty
func (e ErrValidation) Is(target error) bool {
	t, ok := target.(ErrValidation)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// ErrCalculationNotFound indicates no posted calculation exists for the key
type ErrCalculationNotFound struct {
	CalcType  CalcType
	PeriodEnd time.Time
}

func (e ErrCalculationNotFound) Error() string {
	return fmt.Sprintf("no posted %s calculation for period ending %s", e.CalcType, e.PeriodEnd.Format(DateLayout))
}

// Is matches any ErrCalculationNotFound when the target carries no calculation type
func (e ErrCalculationNotFound) Is(target error) bool {
	t, ok := target.(ErrCalculationNotFound)
	if !ok {
		return false
	}
	return t.CalcType == "" || (e.CalcType == t.CalcType && e.PeriodEnd.Equal(t.PeriodEnd))
}

func sameKey(tenantA uuid.UUID, typeA CalcType, endA time.Time, tenantB uuid.UUID, typeB CalcType, endB time.Time) bool {
	return tenantA == tenantB && typeA == typeB && endA.Equal(endB)
}
