package pay

import (
	"github.com/shopspring/decimal"
)

// Calculator applies a rate table, a deduction table and a twins convention.
// A Calculator is immutable after construction and safe for concurrent use.
type Calculator struct {
	Rates      RateTable
	Deductions DeductionTable
	Convention TwinsConvention
}

// NewCalculator returns a calculator with the default tables and the
// separate twins convention.
func NewCalculator() *Calculator {
	return &Calculator{
		Rates:      DefaultRates(),
		Deductions: DefaultDeductions(),
		Convention: TwinsSeparate,
	}
}

var defaultCalculator = NewCalculator()

// Calculate prices in with the default calculator.
func Calculate(in PayInput) PayOutput {
	return defaultCalculator.Calculate(in)
}

// Calculate never fails. Negative hours or a non-positive base rate are
// priced as given and may produce negative amounts.
func (c *Calculator) Calculate(in PayInput) PayOutput {
	hours := c.billable(in.Hours)

	var out PayOutput
	out.RegularPay = hours.RegularHours.Mul(c.Rates.RateFor(in.BaseRate, CategoryRegular))
	out.WeekendPay = hours.WeekendHours.Mul(c.Rates.RateFor(in.BaseRate, CategoryWeekend))
	out.HolidayPay = hours.HolidayHours.Mul(c.Rates.RateFor(in.BaseRate, CategoryHoliday))
	out.TwinsPay = hours.TwinsHours.Mul(c.Rates.RateFor(in.BaseRate, CategoryTwins))
	out.TwinsWeekendPay = hours.TwinsWeekendHours.Mul(c.Rates.RateFor(in.BaseRate, CategoryTwinsWeekend))

	out.GrossPay = decimal.Sum(out.RegularPay, out.WeekendPay, out.HolidayPay, out.TwinsPay, out.TwinsWeekendPay)
	out.Deductions = c.Deductions.Total(in.InsurancePaid, in.BackgroundCheckPaid)
	out.NetPay = out.GrossPay.Sub(out.Deductions)
	return out
}

// CalculateStrict validates first and refuses to price rejected input.
func (c *Calculator) CalculateStrict(in PayInput) (PayOutput, error) {
	if err := c.Validate(in); err != nil {
		return PayOutput{}, err
	}
	return c.Calculate(in), nil
}

// Itemize returns one line per category with the hours actually priced,
// in payslip order. Categories with zero hours are included.
func (c *Calculator) Itemize(in PayInput) []LineItem {
	hours := c.billable(in.Hours)
	out := c.Calculate(in)

	items := make([]LineItem, 0, len(Categories))
	for _, cat := range Categories {
		items = append(items, LineItem{
			Category: cat,
			Hours:    hours.Get(cat),
			Rate:     c.Rates.RateFor(in.BaseRate, cat),
			Amount:   out.Subtotal(cat),
		})
	}
	return items
}

// billable applies the twins convention.
func (c *Calculator) billable(h Hours) Hours {
	if c.Convention == TwinsInclusive {
		h.TwinsHours = h.TwinsHours.Sub(h.TwinsWeekendHours)
	}
	return h
}
