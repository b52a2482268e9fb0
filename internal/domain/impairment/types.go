// Package impairment holds the impairment and write-down domain: calculation
// types, ECL settings, previews and the pure calculators that produce them.
package impairment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of period-end dates
const DateLayout = "2006-01-02"

// CalcType identifies an impairment calculation. It doubles as the period-lock module name.
type CalcType string

const (
	CalcTypeReceivables CalcType = "receivables"
	CalcTypeAssets      CalcType = "assets"
	CalcTypeInventory   CalcType = "inventory"
)

// CalcTypes lists every supported calculation type
var CalcTypes = []CalcType{CalcTypeReceivables, CalcTypeAssets, CalcTypeInventory}

// ParseCalcType validates s as a calculation type
func ParseCalcType(s string) (CalcType, error) {
	c := CalcType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrValidation{Field: "module", Reason: fmt.Sprintf("unknown calculation type %q", s)}
	}
	return c, nil
}

func (c CalcType) Valid() bool {
	switch c {
	case CalcTypeReceivables, CalcTypeAssets, CalcTypeInventory:
		return true
	}
	return false
}

// ReferenceCode is the short code used in transaction references
func (c CalcType) ReferenceCode() string {
	switch c {
	case CalcTypeReceivables:
		return "REC"
	case CalcTypeAssets:
		return "AST"
	case CalcTypeInventory:
		return "INV"
	}
	return strings.ToUpper(string(c))
}

// Label is the human-readable name used in transaction descriptions
func (c CalcType) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Bucket is a receivables aging bucket
type Bucket string

const (
	Bucket0To30  Bucket = "0_30"
	Bucket31To60 Bucket = "31_60"
	Bucket61To90 Bucket = "61_90"
	Bucket90Plus Bucket = "90_plus"
)

// Buckets lists the aging buckets from youngest to oldest
var Buckets = []Bucket{Bucket0To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// ParsePeriodEnd parses an ISO date into a UTC midnight time
func ParsePeriodEnd(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, ErrValidation{Field: "period_end", Reason: "is required"}
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrValidation{Field: "period_end", Reason: "must be an ISO date (YYYY-MM-DD)"}
	}
	return t, nil
}

// Key is the natural key of a calculation: one posting per tenant, type and period end.
type Key struct {
	TenantID  uuid.UUID
	CalcType  CalcType
	PeriodEnd time.Time
}

func (k Key) String() string {
	return fmt.Sprintf("impairment:%s:%s:%s", k.TenantID, k.CalcType, k.PeriodEnd.Format(DateLayout))
}

// Reference is the transaction reference, e.g. IMP-REC-20240331
func (k Key) Reference() string {
	return fmt.Sprintf("IMP-%s-%s", k.CalcType.ReferenceCode(), k.PeriodEnd.Format("20060102"))
}

// Description is the transaction description
func (k Key) Description() string {
	return fmt.Sprintf("%s impairment for period ending %s", k.CalcType.Label(), k.PeriodEnd.Format(DateLayout))
}
