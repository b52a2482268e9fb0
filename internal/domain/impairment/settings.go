package impairment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default ECL rates applied when a tenant has not configured its own
var (
	DefaultRate0To30  = decimal.RequireFromString("0.01")
	DefaultRate31To60 = decimal.RequireFromString("0.05")
	DefaultRate61To90 = decimal.RequireFromString("0.20")
	DefaultRate90Plus = decimal.RequireFromString("0.50")
)

// Settings holds a tenant's expected-credit-loss rates by aging bucket
type Settings struct {
	TenantID   uuid.UUID       `json:"tenant_id"`
	Rate0To30  decimal.Decimal `json:"ecl_0_30"`
	Rate31To60 decimal.Decimal `json:"ecl_31_60"`
	Rate61To90 decimal.Decimal `json:"ecl_61_90"`
	Rate90Plus decimal.Decimal `json:"ecl_90_plus"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DefaultSettings returns the default rates for a tenant
func DefaultSettings(tenantID uuid.UUID) *Settings {
	return &Settings{
		TenantID:   tenantID,
		Rate0To30:  DefaultRate0To30,
		Rate31To60: DefaultRate31To60,
		Rate61To90: DefaultRate61To90,
		Rate90Plus: DefaultRate90Plus,
		UpdatedAt:  time.Now(),
	}
}

// RateFor returns the ECL rate of a bucket
func (s *Settings) RateFor(b Bucket) decimal.Decimal {
	switch b {
	case Bucket0To30:
		return s.Rate0To30
	case Bucket31To60:
		return s.Rate31To60
	case Bucket61To90:
		return s.Rate61To90
	default:
		return s.Rate90Plus
	}
}

// Validate checks every rate is a fraction in [0,1]
func (s *Settings) Validate() error {
	one := decimal.NewFromInt(1)
	for _, b := range Buckets {
		r := s.RateFor(b)
		if r.IsNegative() || r.GreaterThan(one) {
			return ErrValidation{Field: "ecl_" + string(b), Reason: "must be between 0 and 1"}
		}
	}
	return nil
}
