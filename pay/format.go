package pay

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders d as US currency rounded to cents: "$1,680.00",
// "-$155.00".
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}

// FormatHours renders hours with two decimals.
func FormatHours(d decimal.Decimal) string {
	return d.StringFixed(2)
}
