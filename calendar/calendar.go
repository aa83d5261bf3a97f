/*
Package calendar provides day-granular date values and working-day math.

PURPOSE:
  Everything in the planner operates on whole calendar days: allocations,
  holidays, and vacations carry "YYYY-MM-DD" dates with no time component.
  This package owns the Day value type and the month/range arithmetic the
  rest of the system builds on.

KEY CONCEPTS IN THIS FILE:
  - Day:       A calendar date at local midnight
  - Month:     A (year, month) pair with first/last/length helpers
  - DateRange: An inclusive [Start, End] span of days

LOCAL-MIDNIGHT RULE:
  Dates crossing the API boundary are "YYYY-MM-DD" strings. They MUST be
  parsed in the local location, never via a UTC-shifting constructor:
  in a negative-UTC-offset zone a UTC parse followed by local rendering
  slides the date back a day. ParseDay and NewDay enforce this.

SEE ALSO:
  - planner: allocation arithmetic built on these types
  - grid:    calendar cell resolution
*/
package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for dates ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// MonthLayout is the wire format for months ("YYYY-MM").
const MonthLayout = "2006-01"

// WorkingDaysPerWeek converts weekly-hour norms into daily hours.
const WorkingDaysPerWeek = 5

// WeeksPerMonth is used for coarse estimates only, never for exact
// month arithmetic (months are counted day by day).
const WeeksPerMonth = 4.33

// =============================================================================
// DAY - A calendar date at local midnight
// =============================================================================

type Day struct {
	t time.Time
}

// NewDay constructs a Day at local midnight.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// ParseDay parses a "YYYY-MM-DD" string in the local location.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for literals in tests and fixtures.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current date at local midnight.
func Today() Day {
	now := time.Now()
	return NewDay(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Day) Before(o Day) bool        { return d.t.Before(o.t) }
func (d Day) After(o Day) bool         { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool         { return d.t.Equal(o.t) }
func (d Day) BeforeOrEqual(o Day) bool { return !d.t.After(o.t) }
func (d Day) AfterOrEqual(o Day) bool  { return !d.t.Before(o.t) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) Time() time.Time       { return d.t }

func (d Day) String() string { return d.t.Format(DateLayout) }

// DaysBetween returns the signed number of calendar days from a to b,
// excluding the start day (DaysBetween(d, d) == 0). Computed by rounding
// so that a DST transition inside the span cannot shift the count.
func DaysBetween(a, b Day) int {
	return int(math.Round(b.t.Sub(a.t).Hours() / 24))
}

// =============================================================================
// WORKING-DAY HELPERS
// =============================================================================

// IsWeekendDay reports whether the date falls on Saturday or Sunday
// in the local calendar.
func IsWeekendDay(d Day) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayName returns the English weekday name for display ("Monday", ...).
func DayName(d Day) string {
	return d.Weekday().String()
}

// FormatHours renders an hour quantity for display. Trailing fractional
// zeros are trimmed: 7.50 renders "7.5" and zero renders "0", never "0.0".
func FormatHours(v decimal.Decimal) string {
	return v.Round(2).String()
}

// =============================================================================
// MONTH
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing the given day.
func MonthOf(d Day) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.ParseInLocation(MonthLayout, s, time.Local)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() Day { return NewDay(m.Year, m.Month, 1) }

// Last returns the last day of the month.
func (m Month) Last() Day {
	return Day{t: time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, -1)}
}

// NumDays returns the number of calendar days in the month.
func (m Month) NumDays() int { return m.Last().DayOfMonth() }

// Contains reports whether the day falls inside the month.
func (m Month) Contains(d Day) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Range returns the month as an inclusive date range.
func (m Month) Range() DateRange { return DateRange{Start: m.First(), End: m.Last()} }

// WeekendDays counts Saturdays and Sundays in the month.
func (m Month) WeekendDays() int {
	n := 0
	for d := m.First(); d.BeforeOrEqual(m.Last()); d = d.AddDays(1) {
		if IsWeekendDay(d) {
			n++
		}
	}
	return n
}

func (m Month) String() string { return m.First().t.Format(MonthLayout) }

// =============================================================================
// DATE RANGE - Inclusive [Start, End]
// =============================================================================

type DateRange struct {
	Start Day
	End   Day
}

// Valid reports whether Start <= End.
func (r DateRange) Valid() bool { return r.Start.BeforeOrEqual(r.End) }

// Contains reports whether the day falls within [Start, End].
func (r DateRange) Contains(d Day) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day:
// r starts inside o, r ends inside o, or o lies entirely inside r.
func (r DateRange) Overlaps(o DateRange) bool {
	return o.Contains(r.Start) || o.Contains(r.End) ||
		(r.Contains(o.Start) && r.Contains(o.End))
}

// Intersect returns the overlap of two ranges, if any.
func (r DateRange) Intersect(o DateRange) (DateRange, bool) {
	out := DateRange{Start: r.Start, End: r.End}
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	if !out.Valid() {
		return DateRange{}, false
	}
	return out, true
}

// NumDays returns the inclusive length of the range in days.
func (r DateRange) NumDays() int { return DaysBetween(r.Start, r.End) + 1 }

// Days returns every day in the range in order.
func (r DateRange) Days() []Day {
	var days []Day
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Shift moves the whole range by n days, preserving its length.
func (r DateRange) Shift(n int) DateRange {
	return DateRange{Start: r.Start.AddDays(n), End: r.End.AddDays(n)}
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
