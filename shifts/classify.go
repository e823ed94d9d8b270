package shifts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nightwatch/nursepay/pay"
)

// Segment is the part of a shift that falls on one calendar day.
type Segment struct {
	ShiftID  string       `json:"shift_id"`
	Date     Date         `json:"date"`
	Minutes  int          `json:"minutes"`
	Category pay.Category `json:"category"`
}

// CategoryFor picks the pay category for hours worked on one day.
// Holidays outrank weekends. Twins care on a holiday is paid as twins
// weekend: both premiums are the same size and there is no separate
// twins-holiday category.
func CategoryFor(twins, weekend, holiday bool) pay.Category {
	switch {
	case twins && (weekend || holiday):
		return pay.CategoryTwinsWeekend
	case twins:
		return pay.CategoryTwins
	case holiday:
		return pay.CategoryHoliday
	case weekend:
		return pay.CategoryWeekend
	default:
		return pay.CategoryRegular
	}
}

// Classify splits s at each local midnight in loc and categorises every
// piece. Seconds are truncated per segment. A nil calendar means no holidays.
func Classify(s Shift, cal Calendar, loc *time.Location) []Segment {
	if loc == nil {
		loc = time.UTC
	}
	if cal == nil {
		cal = NoHolidays{}
	}
	start, end := s.Start.In(loc), s.End.In(loc)

	var segments []Segment
	for cursor := start; cursor.Before(end); {
		day := DateOf(cursor)
		next := day.AddDays(1).In(loc)
		segEnd := end
		if next.Before(end) {
			segEnd = next
		}

		minutes := int(segEnd.Sub(cursor) / time.Minute)
		if minutes > 0 {
			segments = append(segments, Segment{
				ShiftID:  s.ID,
				Date:     day,
				Minutes:  minutes,
				Category: CategoryFor(s.Twins, day.IsWeekend(), cal.IsHoliday(day)),
			})
		}
		cursor = segEnd
	}
	return segments
}

// Aggregate sums the completed shifts' segments that fall inside period and
// returns hours per category, each rounded to two decimals.
func Aggregate(list []Shift, period PayPeriod, cal Calendar, loc *time.Location) pay.Hours {
	minutes := make(map[pay.Category]int)
	for _, s := range list {
		if s.Status != StatusCompleted {
			continue
		}
		for _, seg := range Classify(s, cal, loc) {
			if period.Contains(seg.Date) {
				minutes[seg.Category] += seg.Minutes
			}
		}
	}

	var hours pay.Hours
	for _, c := range pay.Categories {
		hours = hours.Add(c, MinutesToHours(minutes[c]))
	}
	return hours
}

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts whole minutes to hours rounded to two decimals.
func MinutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty).Round(2)
}
