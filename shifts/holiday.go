package shifts

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY CALENDAR - Days paid at the holiday rate
// =============================================================================

// Holiday is a day on which worked hours earn the holiday differential.
type Holiday struct {
	ID        string `json:"id"`
	Date      Date   `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"` // same month/day every year
}

// Calendar answers whether a date is a holiday.
type Calendar interface {
	IsHoliday(d Date) bool
}

// HolidaySet is an in-memory Calendar built from a list of holidays.
type HolidaySet struct {
	exact     map[Date]string
	recurring map[monthDay]string
}

type monthDay struct {
	month time.Month
	day   int
}

// NewHolidaySet indexes holidays for lookup.
func NewHolidaySet(holidays []Holiday) *HolidaySet {
	hs := &HolidaySet{
		exact:     make(map[Date]string),
		recurring: make(map[monthDay]string),
	}
	for _, h := range holidays {
		if h.Recurring {
			hs.recurring[monthDay{h.Date.Month(), h.Date.Day()}] = h.Name
		} else {
			hs.exact[h.Date] = h.Name
		}
	}
	return hs
}

// IsHoliday implements Calendar.
func (hs *HolidaySet) IsHoliday(d Date) bool {
	_, ok := hs.Name(d)
	return ok
}

// Name returns the holiday's name for d.
func (hs *HolidaySet) Name(d Date) (string, bool) {
	if hs == nil {
		return "", false
	}
	if name, ok := hs.exact[d]; ok {
		return name, true
	}
	name, ok := hs.recurring[monthDay{d.Month(), d.Day()}]
	return name, ok
}

// NoHolidays is a Calendar with no holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool { return false }

// DefaultHolidays returns the US federal holidays observed in year. Fixed
// holidays are recurring; floating ones are dated for that year only.
func DefaultHolidays(year int) []Holiday {
	holidays := []Holiday{
		fixed(year, time.January, 1, "New Year's Day"),
		floating(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day"),
		floating(nthWeekday(year, time.February, time.Monday, 3), "Presidents' Day"),
		floating(lastWeekday(year, time.May, time.Monday), "Memorial Day"),
		fixed(year, time.June, 19, "Juneteenth"),
		fixed(year, time.July, 4, "Independence Day"),
		floating(nthWeekday(year, time.September, time.Monday, 1), "Labor Day"),
		floating(nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"),
		fixed(year, time.November, 11, "Veterans Day"),
		floating(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"),
		fixed(year, time.December, 25, "Christmas Day"),
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays
}

func fixed(year int, month time.Month, day int, name string) Holiday {
	return Holiday{
		ID:        fmt.Sprintf("holiday-%02d%02d", month, day),
		Date:      NewDate(year, month, day),
		Name:      name,
		Recurring: true,
	}
}

func floating(d Date, name string) Holiday {
	return Holiday{
		ID:   "holiday-" + d.String(),
		Date: d,
		Name: name,
	}
}

// nthWeekday returns the n-th (1-based) given weekday of a month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) Date {
	first := NewDate(year, month, 1)
	shift := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDays(shift + 7*(n-1))
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, wd time.Weekday) Date {
	last := EndOfMonth(NewDate(year, month, 1))
	shift := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDays(-shift)
}
