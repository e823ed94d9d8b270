package pay

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TABLE - Hourly differentials on top of the base rate
// =============================================================================

// RateTable holds the per-hour premiums added to a nurse's base rate.
// Twins-weekend hours earn both the weekend and the twins premium.
type RateTable struct {
	WeekendDifferential decimal.Decimal `json:"weekend_differential" toml:"weekend_differential"`
	HolidayDifferential decimal.Decimal `json:"holiday_differential" toml:"holiday_differential"`
	TwinsDifferential   decimal.Decimal `json:"twins_differential" toml:"twins_differential"`
}

// DefaultRates returns the agency's standard differentials: +4 weekend,
// +4 holiday, +5 twins.
func DefaultRates() RateTable {
	return RateTable{
		WeekendDifferential: decimal.NewFromInt(4),
		HolidayDifferential: decimal.NewFromInt(4),
		TwinsDifferential:   decimal.NewFromInt(5),
	}
}

// Differential returns the premium for a category.
func (r RateTable) Differential(c Category) decimal.Decimal {
	switch c {
	case CategoryWeekend:
		return r.WeekendDifferential
	case CategoryHoliday:
		return r.HolidayDifferential
	case CategoryTwins:
		return r.TwinsDifferential
	case CategoryTwinsWeekend:
		return r.WeekendDifferential.Add(r.TwinsDifferential)
	default:
		return decimal.Zero
	}
}

// RateFor returns the effective hourly rate for a category.
func (r RateTable) RateFor(base decimal.Decimal, c Category) decimal.Decimal {
	return base.Add(r.Differential(c))
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

// DeductionTable holds the fixed amounts withheld per pay period.
type DeductionTable struct {
	Insurance       decimal.Decimal `json:"insurance" toml:"insurance"`
	BackgroundCheck decimal.Decimal `json:"background_check" toml:"background_check"`
}

// DefaultDeductions returns 125 for insurance and 30 for the background check.
func DefaultDeductions() DeductionTable {
	return DeductionTable{
		Insurance:       decimal.NewFromInt(125),
		BackgroundCheck: decimal.NewFromInt(30),
	}
}

// Applicable lists the deductions triggered by the two flags.
func (d DeductionTable) Applicable(insurance, backgroundCheck bool) []Deduction {
	var out []Deduction
	if insurance {
		out = append(out, Deduction{Name: "Insurance", Amount: d.Insurance})
	}
	if backgroundCheck {
		out = append(out, Deduction{Name: "Background check", Amount: d.BackgroundCheck})
	}
	return out
}

// Total sums the deductions triggered by the two flags.
func (d DeductionTable) Total(insurance, backgroundCheck bool) decimal.Decimal {
	total := decimal.Zero
	for _, ded := range d.Applicable(insurance, backgroundCheck) {
		total = total.Add(ded.Amount)
	}
	return total
}

// =============================================================================
// TWINS CONVENTION
// =============================================================================

// TwinsConvention says how TwinsHours relates to TwinsWeekendHours.
type TwinsConvention string

const (
	// TwinsSeparate: TwinsHours already excludes weekend twins hours.
	TwinsSeparate TwinsConvention = "separate"

	// TwinsInclusive: TwinsHours counts every twins hour, weekend ones
	// included, so TwinsWeekendHours is subtracted before pricing.
	TwinsInclusive TwinsConvention = "inclusive"
)

// ParseTwinsConvention accepts "separate" or "inclusive" (case-insensitive).
// The empty string selects TwinsSeparate.
func ParseTwinsConvention(s string) (TwinsConvention, error) {
	switch TwinsConvention(strings.ToLower(strings.TrimSpace(s))) {
	case "", TwinsSeparate:
		return TwinsSeparate, nil
	case TwinsInclusive:
		return TwinsInclusive, nil
	default:
		return "", fmt.Errorf("%w: unknown twins convention %q", ErrInvalidInput, s)
	}
}
