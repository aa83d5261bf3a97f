package calendar_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/capacity-planner/calendar"
)

// =============================================================================
// DAY PARSING AND ARITHMETIC
// =============================================================================

func TestParseDay_RoundTrips(t *testing.T) {
	// GIVEN: A date string
	// WHEN: Parsing and formatting it back
	// THEN: The string is unchanged and the day is local midnight

	d, err := calendar.ParseDay("2026-02-14")
	require.NoError(t, err)

	assert.Equal(t, "2026-02-14", d.String())
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 14, d.DayOfMonth())

	tt := d.Time()
	assert.Equal(t, 0, tt.Hour())
	assert.Equal(t, time.Local, tt.Location())
}

func TestParseDay_RejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2026-2-14", "14/02/2026", "2026-13-01", "not-a-date"} {
		_, err := calendar.ParseDay(s)
		assert.Error(t, err, "input %q should be rejected", s)
	}
}

func TestAddDays_CrossesMonthAndYearBoundaries(t *testing.T) {
	d := calendar.MustParseDay("2025-12-30")

	assert.Equal(t, "2025-12-31", d.AddDays(1).String())
	assert.Equal(t, "2026-01-01", d.AddDays(2).String())
	assert.Equal(t, "2025-12-29", d.AddDays(-1).String())
}

func TestDaysBetween_ExcludesStartDay(t *testing.T) {
	// GIVEN: A five-day span
	// THEN: The difference is four (the start day does not count)

	start := calendar.MustParseDay("2026-03-02")
	end := calendar.MustParseDay("2026-03-06")

	assert.Equal(t, 4, calendar.DaysBetween(start, end))
	assert.Equal(t, 0, calendar.DaysBetween(start, start))
	assert.Equal(t, -4, calendar.DaysBetween(end, start))
}

func TestDaysBetween_StableAcrossDSTTransition(t *testing.T) {
	// GIVEN: The local zone springs forward on 2026-03-08, leaving the
	// Mar 7 -> Mar 9 span an hour short of 48 hours
	// THEN: The day count is still exact

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	restore := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = restore })

	start := calendar.MustParseDay("2026-03-07")
	end := calendar.MustParseDay("2026-03-09")

	assert.Equal(t, 2, calendar.DaysBetween(start, end))

	r := calendar.DateRange{Start: start, End: end}
	assert.Equal(t, 3, r.NumDays())
	assert.Len(t, r.Days(), 3)
}

func TestIsWeekendDay(t *testing.T) {
	assert.True(t, calendar.IsWeekendDay(calendar.MustParseDay("2026-03-07")))  // Saturday
	assert.True(t, calendar.IsWeekendDay(calendar.MustParseDay("2026-03-08")))  // Sunday
	assert.False(t, calendar.IsWeekendDay(calendar.MustParseDay("2026-03-09"))) // Monday
}

func TestFormatHours_TwoDecimalPlaces(t *testing.T) {
	assert.Equal(t, "7.5", calendar.FormatHours(decimal.RequireFromString("7.5")))
	assert.Equal(t, "141", calendar.FormatHours(decimal.RequireFromString("141")))
	assert.Equal(t, "8.67", calendar.FormatHours(decimal.RequireFromString("8.6666")))
}

// =============================================================================
// MONTH
// =============================================================================

func TestMonth_BoundsAndLength(t *testing.T) {
	m, err := calendar.ParseMonth("2026-02")
	require.NoError(t, err)

	assert.Equal(t, "2026-02-01", m.First().String())
	assert.Equal(t, "2026-02-28", m.Last().String())
	assert.Equal(t, 28, m.NumDays())
	assert.Equal(t, "2026-02", m.String())

	leap, err := calendar.ParseMonth("2028-02")
	require.NoError(t, err)
	assert.Equal(t, 29, leap.NumDays())
}

func TestMonth_Contains(t *testing.T) {
	m := calendar.MonthOf(calendar.MustParseDay("2026-06-15"))

	assert.True(t, m.Contains(calendar.MustParseDay("2026-06-01")))
	assert.True(t, m.Contains(calendar.MustParseDay("2026-06-30")))
	assert.False(t, m.Contains(calendar.MustParseDay("2026-05-31")))
	assert.False(t, m.Contains(calendar.MustParseDay("2026-07-01")))
}

func TestMonth_WeekendDays(t *testing.T) {
	// June 2026 has 30 days starting on a Monday: 4 Saturdays + 4 Sundays
	m, err := calendar.ParseMonth("2026-06")
	require.NoError(t, err)
	assert.Equal(t, 8, m.WeekendDays())

	// August 2026 starts on a Saturday and has 31 days: 5 + 5
	m, err = calendar.ParseMonth("2026-08")
	require.NoError(t, err)
	assert.Equal(t, 10, m.WeekendDays())
}

// =============================================================================
// DATE RANGE
// =============================================================================

func rng(start, end string) calendar.DateRange {
	return calendar.DateRange{
		Start: calendar.MustParseDay(start),
		End:   calendar.MustParseDay(end),
	}
}

func TestDateRange_Valid(t *testing.T) {
	assert.True(t, rng("2026-01-05", "2026-01-09").Valid())
	assert.True(t, rng("2026-01-05", "2026-01-05").Valid(), "single-day range is valid")
	assert.False(t, rng("2026-01-09", "2026-01-05").Valid())
}

func TestDateRange_Overlaps(t *testing.T) {
	a := rng("2026-01-05", "2026-01-09")

	assert.True(t, a.Overlaps(rng("2026-01-09", "2026-01-12")), "shared endpoint overlaps")
	assert.True(t, a.Overlaps(rng("2026-01-01", "2026-01-31")), "containment overlaps")
	assert.False(t, a.Overlaps(rng("2026-01-10", "2026-01-12")))
}

func TestDateRange_Intersect(t *testing.T) {
	a := rng("2026-01-05", "2026-01-20")

	got, ok := a.Intersect(rng("2026-01-15", "2026-01-31"))
	require.True(t, ok)
	assert.Equal(t, "2026-01-15", got.Start.String())
	assert.Equal(t, "2026-01-20", got.End.String())

	_, ok = a.Intersect(rng("2026-02-01", "2026-02-05"))
	assert.False(t, ok)
}

func TestDateRange_Shift(t *testing.T) {
	// GIVEN: A three-day range
	// WHEN: Shifting it forward two days
	// THEN: Duration is preserved

	a := rng("2026-01-05", "2026-01-07")
	b := a.Shift(2)

	assert.Equal(t, "2026-01-07", b.Start.String())
	assert.Equal(t, "2026-01-09", b.End.String())
	assert.Equal(t, a.NumDays(), b.NumDays())
}
