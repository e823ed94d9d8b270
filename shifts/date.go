/*
Package shifts models the night shifts nurses work and turns them into
payable hours.

PURPOSE:
  A shift is a start/end instant. Pay depends on which calendar days those
  hours fall on (weekday, weekend, holiday) and on whether the family has
  twins. This package owns that classification, pay-period arithmetic and
  the holiday calendar.

KEY CONCEPTS:
  - Date: a calendar day with no time-of-day (date.go)
  - PayPeriod / PeriodConfig: the recurring pay interval (period.go)
  - Holiday / Calendar: days paid at the holiday rate (holiday.go)
  - Shift: a scheduled, completed or cancelled booking (shift.go)
  - Classify / Aggregate: split shifts at midnight and sum hours per pay
    category (classify.go)

NIGHT SHIFTS:
  A 22:00-06:00 shift from Friday into Saturday is two segments: two
  Friday hours and six Saturday hours. Each segment is priced on its own
  day, and each segment belongs to the pay period containing its day.

SEE ALSO:
  - pay/: prices the aggregated hours
  - payroll/: runs the aggregation for every nurse in a period
*/
package shifts

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day. The zero value is not a valid date.
type Date struct {
	t time.Time // always midnight UTC
}

const dateLayout = "2006-01-02"

// NewDate builds a date. Out-of-range values normalise like time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) String() string        { return d.t.Format(dateLayout) }

// IsWeekend reports Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween counts whole days from a to b (negative if b is before a).
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t).Hours() / 24)
}

// EndOfMonth returns the last day of the month containing d.
func EndOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month()+1, 1).AddDays(-1)
}
