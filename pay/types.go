/*
Package pay computes what a nurse earns for a pay period.

PURPOSE:
  Turns hours worked per pay category into per-category subtotals, gross pay,
  fixed deductions and net pay. The calculation is pure: the same input
  always yields the same output and nothing outside the call is touched.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: the five pay categories (regular, weekend, holiday, twins,
    twins-weekend)
  - Hours: hours worked per category for one period
  - PayInput / PayOutput: the calculator contract
  - LineItem: one category row (hours x rate = amount) for payslips

PRECISION:
  All quantities are decimal.Decimal so that gross pay is exactly the sum of
  the subtotals. Values are never rounded by the calculator; rounding is a
  presentation concern (see FormatMoney).

USAGE:
  out := pay.Calculate(pay.PayInput{
      BaseRate: decimal.NewFromInt(28),
      Hours:    pay.Hours{RegularHours: decimal.NewFromInt(60)},
  })
  fmt.Println(pay.FormatMoney(out.NetPay))

SEE ALSO:
  - rates.go: differentials, deductions, twins convention
  - calculator.go: the formula
  - parse.go: lenient coercion of form input
*/
package pay

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is a bucket of hours that shares one hourly rate.
type Category string

const (
	CategoryRegular      Category = "regular"
	CategoryWeekend      Category = "weekend"
	CategoryHoliday      Category = "holiday"
	CategoryTwins        Category = "twins"
	CategoryTwinsWeekend Category = "twins_weekend"
)

// Categories lists every category in payslip order.
var Categories = []Category{
	CategoryRegular,
	CategoryWeekend,
	CategoryHoliday,
	CategoryTwins,
	CategoryTwinsWeekend,
}

// Label returns a human readable name.
func (c Category) Label() string {
	switch c {
	case CategoryRegular:
		return "Regular"
	case CategoryWeekend:
		return "Weekend"
	case CategoryHoliday:
		return "Holiday"
	case CategoryTwins:
		return "Twins"
	case CategoryTwinsWeekend:
		return "Twins weekend"
	default:
		return string(c)
	}
}

// =============================================================================
// HOURS
// =============================================================================

// Hours holds hours worked per category for one pay period.
type Hours struct {
	RegularHours      decimal.Decimal `json:"regular_hours"`
	WeekendHours      decimal.Decimal `json:"weekend_hours"`
	HolidayHours      decimal.Decimal `json:"holiday_hours"`
	TwinsHours        decimal.Decimal `json:"twins_hours"`
	TwinsWeekendHours decimal.Decimal `json:"twins_weekend_hours"`
}

// Get returns the hours recorded for a category.
func (h Hours) Get(c Category) decimal.Decimal {
	switch c {
	case CategoryRegular:
		return h.RegularHours
	case CategoryWeekend:
		return h.WeekendHours
	case CategoryHoliday:
		return h.HolidayHours
	case CategoryTwins:
		return h.TwinsHours
	case CategoryTwinsWeekend:
		return h.TwinsWeekendHours
	default:
		return decimal.Zero
	}
}

// Add returns a copy of h with d added to category c. Unknown categories are ignored.
func (h Hours) Add(c Category, d decimal.Decimal) Hours {
	switch c {
	case CategoryRegular:
		h.RegularHours = h.RegularHours.Add(d)
	case CategoryWeekend:
		h.WeekendHours = h.WeekendHours.Add(d)
	case CategoryHoliday:
		h.HolidayHours = h.HolidayHours.Add(d)
	case CategoryTwins:
		h.TwinsHours = h.TwinsHours.Add(d)
	case CategoryTwinsWeekend:
		h.TwinsWeekendHours = h.TwinsWeekendHours.Add(d)
	}
	return h
}

// Scale multiplies every category by k.
func (h Hours) Scale(k decimal.Decimal) Hours {
	return Hours{
		RegularHours:      h.RegularHours.Mul(k),
		WeekendHours:      h.WeekendHours.Mul(k),
		HolidayHours:      h.HolidayHours.Mul(k),
		TwinsHours:        h.TwinsHours.Mul(k),
		TwinsWeekendHours: h.TwinsWeekendHours.Mul(k),
	}
}

// Total is the sum of all categories.
func (h Hours) Total() decimal.Decimal {
	return decimal.Sum(h.RegularHours, h.WeekendHours, h.HolidayHours, h.TwinsHours, h.TwinsWeekendHours)
}

// IsZero reports whether no hours were recorded in any category.
func (h Hours) IsZero() bool {
	for _, c := range Categories {
		if !h.Get(c).IsZero() {
			return false
		}
	}
	return true
}

// =============================================================================
// CALCULATOR CONTRACT
// =============================================================================

// PayInput is everything the calculator needs for one worker and one period.
//
// InsurancePaid and BackgroundCheckPaid mean the agency fronted the fee for
// the nurse; when set, the fixed amount is withheld from this period's pay.
type PayInput struct {
	BaseRate decimal.Decimal `json:"base_rate"`
	Hours
	InsurancePaid       bool `json:"insurance_paid"`
	BackgroundCheckPaid bool `json:"background_check_paid"`
}

// PayOutput is the result of a calculation.
type PayOutput struct {
	RegularPay      decimal.Decimal `json:"regular_pay"`
	WeekendPay      decimal.Decimal `json:"weekend_pay"`
	HolidayPay      decimal.Decimal `json:"holiday_pay"`
	TwinsPay        decimal.Decimal `json:"twins_pay"`
	TwinsWeekendPay decimal.Decimal `json:"twins_weekend_pay"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	Deductions      decimal.Decimal `json:"deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// Subtotal returns the pay for a single category.
func (o PayOutput) Subtotal(c Category) decimal.Decimal {
	switch c {
	case CategoryRegular:
		return o.RegularPay
	case CategoryWeekend:
		return o.WeekendPay
	case CategoryHoliday:
		return o.HolidayPay
	case CategoryTwins:
		return o.TwinsPay
	case CategoryTwinsWeekend:
		return o.TwinsWeekendPay
	default:
		return decimal.Zero
	}
}

// LineItem is one payslip row.
type LineItem struct {
	Category Category        `json:"category"`
	Hours    decimal.Decimal `json:"hours"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// Deduction is one fixed amount withheld from gross pay.
type Deduction struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}
