package shifts

import (
	"fmt"
	"strings"
)

// =============================================================================
// PAY PERIOD - The interval hours are aggregated over
// =============================================================================

// PayPeriod is an inclusive range of dates.
type PayPeriod struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if d is within [Start, End].
func (p PayPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every date in the period.
func (p PayPeriod) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days in the period.
func (p PayPeriod) Len() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p PayPeriod) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Frequency defines how often nurses are paid.
type Frequency string

const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyBiweekly    Frequency = "biweekly"    // 14 days from an anchor
	FrequencySemimonthly Frequency = "semimonthly" // 1st-15th, 16th-end of month
	FrequencyMonthly     Frequency = "monthly"
)

// ParseFrequency accepts the Frequency names, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencySemimonthly, FrequencyMonthly:
		return f, nil
	}
	return "", fmt.Errorf("unknown pay frequency %q", s)
}

// PeriodConfig determines which pay period a date falls into.
type PeriodConfig struct {
	Frequency Frequency

	// Anchor is the first day of any one weekly or biweekly period.
	// Ignored for semimonthly and monthly.
	Anchor Date
}

// DefaultPeriodConfig is biweekly, anchored on Monday 2025-01-06.
func DefaultPeriodConfig() PeriodConfig {
	return PeriodConfig{Frequency: FrequencyBiweekly, Anchor: NewDate(2025, 1, 6)}
}

// PeriodFor returns the period that contains d.
func (pc PeriodConfig) PeriodFor(d Date) PayPeriod {
	switch pc.Frequency {
	case FrequencyWeekly:
		return pc.fixedLengthPeriod(d, 7)
	case FrequencySemimonthly:
		if d.Day() <= 15 {
			return PayPeriod{Start: NewDate(d.Year(), d.Month(), 1), End: NewDate(d.Year(), d.Month(), 15)}
		}
		return PayPeriod{Start: NewDate(d.Year(), d.Month(), 16), End: EndOfMonth(d)}
	case FrequencyMonthly:
		start := NewDate(d.Year(), d.Month(), 1)
		return PayPeriod{Start: start, End: EndOfMonth(start)}
	default:
		return pc.fixedLengthPeriod(d, 14)
	}
}

func (pc PeriodConfig) fixedLengthPeriod(d Date, length int) PayPeriod {
	anchor := pc.Anchor
	if anchor.IsZero() {
		anchor = DefaultPeriodConfig().Anchor
	}
	offset := DaysBetween(anchor, d)
	n := offset / length
	if offset < 0 && offset%length != 0 {
		n-- // floor division for dates before the anchor
	}
	start := anchor.AddDays(n * length)
	return PayPeriod{Start: start, End: start.AddDays(length - 1)}
}

// Next returns the period following p.
func (pc PeriodConfig) Next(p PayPeriod) PayPeriod {
	return pc.PeriodFor(p.End.AddDays(1))
}

// Previous returns the period before p.
func (pc PeriodConfig) Previous(p PayPeriod) PayPeriod {
	return pc.PeriodFor(p.Start.AddDays(-1))
}
