package pay

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormInput is PayInput as typed into a form: every number is free text.
type FormInput struct {
	BaseRate            string `json:"base_rate"`
	RegularHours        string `json:"regular_hours"`
	WeekendHours        string `json:"weekend_hours"`
	HolidayHours        string `json:"holiday_hours"`
	TwinsHours          string `json:"twins_hours"`
	TwinsWeekendHours   string `json:"twins_weekend_hours"`
	InsurancePaid       bool   `json:"insurance_paid"`
	BackgroundCheckPaid bool   `json:"background_check_paid"`
}

// Bounds on what ParseAmount accepts. Larger values would expand to
// enormous digit strings when formatted.
const (
	maxAmountLength   = 32
	maxAmountExponent = 12
)

// ParseAmount reads a number typed by a person. Currency symbols, thousands
// separators and surrounding spaces are tolerated. Anything that still does
// not parse, or is out of bounds (see Plausible), is treated as zero; it
// never fails.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || len(cleaned) > maxAmountLength {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || !Plausible(d) {
		return decimal.Zero
	}
	return d
}

// Plausible reports whether d's exponent lies within ±12, the range a rate
// or an hour count can use.
func Plausible(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxAmountExponent && exp <= maxAmountExponent
}

// ParseInput coerces every field with ParseAmount.
func ParseInput(f FormInput) PayInput {
	return PayInput{
		BaseRate: ParseAmount(f.BaseRate),
		Hours: Hours{
			RegularHours:      ParseAmount(f.RegularHours),
			WeekendHours:      ParseAmount(f.WeekendHours),
			HolidayHours:      ParseAmount(f.HolidayHours),
			TwinsHours:        ParseAmount(f.TwinsHours),
			TwinsWeekendHours: ParseAmount(f.TwinsWeekendHours),
		},
		InsurancePaid:       f.InsurancePaid,
		BackgroundCheckPaid: f.BackgroundCheckPaid,
	}
}
