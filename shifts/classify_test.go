package shifts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func completed(id string, start, end time.Time, twins bool) shifts.Shift {
	return shifts.Shift{
		ID:      id,
		NurseID: "nurse-1",
		Start:   start,
		End:     end,
		Twins:   twins,
		Status:  shifts.StatusCompleted,
	}
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, pay.CategoryRegular, shifts.CategoryFor(false, false, false))
	assert.Equal(t, pay.CategoryWeekend, shifts.CategoryFor(false, true, false))
	assert.Equal(t, pay.CategoryHoliday, shifts.CategoryFor(false, false, true))
	assert.Equal(t, pay.CategoryHoliday, shifts.CategoryFor(false, true, true), "holiday outranks weekend")
	assert.Equal(t, pay.CategoryTwins, shifts.CategoryFor(true, false, false))
	assert.Equal(t, pay.CategoryTwinsWeekend, shifts.CategoryFor(true, true, false))
	assert.Equal(t, pay.CategoryTwinsWeekend, shifts.CategoryFor(true, false, true))
}

func TestClassify_FridayNightSplitsAtMidnight(t *testing.T) {
	// GIVEN: Friday 22:00 to Saturday 06:00
	s := completed("s1", at(2025, 3, 14, 22, 0), at(2025, 3, 15, 6, 0), false)

	// WHEN
	segs := shifts.Classify(s, nil, time.UTC)

	// THEN: two Friday hours at the regular rate, six Saturday hours at the weekend rate
	require.Len(t, segs, 2)
	assert.Equal(t, "2025-03-14", segs[0].Date.String())
	assert.Equal(t, 120, segs[0].Minutes)
	assert.Equal(t, pay.CategoryRegular, segs[0].Category)
	assert.Equal(t, "2025-03-15", segs[1].Date.String())
	assert.Equal(t, 360, segs[1].Minutes)
	assert.Equal(t, pay.CategoryWeekend, segs[1].Category)
}

func TestClassify_TwinsFridayNight(t *testing.T) {
	s := completed("s1", at(2025, 3, 14, 22, 0), at(2025, 3, 15, 6, 0), true)
	segs := shifts.Classify(s, nil, time.UTC)

	require.Len(t, segs, 2)
	assert.Equal(t, pay.CategoryTwins, segs[0].Category)
	assert.Equal(t, pay.CategoryTwinsWeekend, segs[1].Category)
}

func TestClassify_UsesLocalMidnight(t *testing.T) {
	// GIVEN: The same Friday-night shift stored in UTC for a family five hours behind
	est := time.FixedZone("EST", -5*3600)
	s := completed("s1", at(2025, 3, 15, 3, 0), at(2025, 3, 15, 11, 0), false)

	// WHEN: Classified in UTC the whole shift is on Saturday
	utc := shifts.Classify(s, nil, time.UTC)
	require.Len(t, utc, 1)
	assert.Equal(t, pay.CategoryWeekend, utc[0].Category)

	// THEN: In the family's zone it starts on Friday
	local := shifts.Classify(s, nil, est)
	require.Len(t, local, 2)
	assert.Equal(t, 120, local[0].Minutes)
	assert.Equal(t, pay.CategoryRegular, local[0].Category)
	assert.Equal(t, 360, local[1].Minutes)
}

func TestClassify_HolidayNight(t *testing.T) {
	cal := shifts.NewHolidaySet(shifts.DefaultHolidays(2025))

	// Thursday July 3rd 20:00 into Independence Day (a Friday)
	s := completed("s1", at(2025, 7, 3, 20, 0), at(2025, 7, 4, 8, 0), false)
	segs := shifts.Classify(s, cal, time.UTC)

	require.Len(t, segs, 2)
	assert.Equal(t, 240, segs[0].Minutes)
	assert.Equal(t, pay.CategoryRegular, segs[0].Category)
	assert.Equal(t, 480, segs[1].Minutes)
	assert.Equal(t, pay.CategoryHoliday, segs[1].Category)
}

func TestClassify_EndingAtMidnightHasNoEmptySegment(t *testing.T) {
	s := completed("s1", at(2025, 3, 12, 18, 0), at(2025, 3, 13, 0, 0), false)
	segs := shifts.Classify(s, nil, time.UTC)
	require.Len(t, segs, 1)
	assert.Equal(t, 360, segs[0].Minutes)
}

func TestAggregate_SplitsAcrossPayPeriods(t *testing.T) {
	// GIVEN: A Sunday-night shift straddling the end of the first 2025 biweekly period
	pc := shifts.DefaultPeriodConfig()
	first := pc.PeriodFor(date(2025, 1, 19))
	second := pc.Next(first)
	list := []shifts.Shift{
		completed("s1", at(2025, 1, 19, 22, 0), at(2025, 1, 20, 6, 0), false),
	}

	// WHEN: Aggregating each period without holidays
	h1 := shifts.Aggregate(list, first, shifts.NoHolidays{}, time.UTC)
	h2 := shifts.Aggregate(list, second, shifts.NoHolidays{}, time.UTC)

	// THEN: Sunday hours land in the first period, Monday hours in the second
	assert.Equal(t, "2", h1.WeekendHours.String())
	assert.True(t, h1.RegularHours.IsZero())
	assert.Equal(t, "6", h2.RegularHours.String())
	assert.True(t, h2.WeekendHours.IsZero())

	// AND: With the holiday calendar the Monday is MLK day
	cal := shifts.NewHolidaySet(shifts.DefaultHolidays(2025))
	h2 = shifts.Aggregate(list, second, cal, time.UTC)
	assert.Equal(t, "6", h2.HolidayHours.String())
}

func TestAggregate_OnlyCompletedShiftsCount(t *testing.T) {
	p := period(date(2025, 3, 10), date(2025, 3, 23))

	done := completed("s1", at(2025, 3, 11, 22, 0), at(2025, 3, 12, 6, 20), true)
	scheduled := completed("s2", at(2025, 3, 12, 22, 0), at(2025, 3, 13, 6, 0), false)
	scheduled.Status = shifts.StatusScheduled
	cancelled := completed("s3", at(2025, 3, 13, 22, 0), at(2025, 3, 14, 6, 0), false)
	cancelled.Status = shifts.StatusCancelled

	h := shifts.Aggregate([]shifts.Shift{done, scheduled, cancelled}, p, nil, time.UTC)

	assert.Equal(t, "8.33", h.TwinsHours.String())
	assert.True(t, h.RegularHours.IsZero())
	assert.Equal(t, "8.33", h.Total().String())
}

func TestMinutesToHours(t *testing.T) {
	assert.Equal(t, "0.25", shifts.MinutesToHours(15).String())
	assert.Equal(t, "0.33", shifts.MinutesToHours(20).String())
	assert.Equal(t, "0.67", shifts.MinutesToHours(40).String())
	assert.Equal(t, "12", shifts.MinutesToHours(720).String())
}

func TestShift_ValidateAndTransition(t *testing.T) {
	s := completed("s1", at(2025, 3, 14, 22, 0), at(2025, 3, 15, 6, 0), false)
	s.Status = shifts.StatusScheduled
	require.NoError(t, s.Validate())

	bad := s
	bad.End = bad.Start
	assert.ErrorIs(t, bad.Validate(), shifts.ErrInvalidShift)

	long := s
	long.End = long.Start.Add(25 * time.Hour)
	assert.ErrorIs(t, long.Validate(), shifts.ErrInvalidShift)

	done, err := s.Transition(shifts.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, shifts.StatusCompleted, done.Status)

	_, err = done.Transition(shifts.StatusCancelled)
	assert.ErrorIs(t, err, shifts.ErrShiftTransition)
}

func TestShift_Overlaps(t *testing.T) {
	a := completed("a", at(2025, 3, 14, 22, 0), at(2025, 3, 15, 6, 0), false)
	b := completed("b", at(2025, 3, 15, 5, 0), at(2025, 3, 15, 9, 0), false)
	c := completed("c", at(2025, 3, 15, 6, 0), at(2025, 3, 15, 9, 0), false)
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "back-to-back shifts do not overlap")
}

func TestStatus_Valid(t *testing.T) {
	for _, st := range []shifts.Status{shifts.StatusScheduled, shifts.StatusCompleted, shifts.StatusCancelled} {
		assert.True(t, st.Valid(), st)
	}
	assert.False(t, shifts.Status("paid").Valid())
	assert.False(t, shifts.Status("").Valid())
}
