/*
engine.go - Allocation arithmetic

PURPOSE:
  Pure functions computing an employee's monthly capacity: available
  hours, allocated hours, allocation percentage, and the per-component
  breakdown shown in audit tooltips.

THE CAPACITY FORMULA:
  dailyHours   = weeklyHours(country) / 5
  grossHours   = calendarDaysInMonth * dailyHours   (weekends included:
                 a full-month baseline, deductions come next)
  weekendHours = weekendDaysInMonth * dailyHours
  holidayHours = applicable weekday holidays in month * dailyHours
  vacationHours= weekdays in month covered by any vacation * dailyHours
  bufferHours  = bufferPct% of (grossHours - weekendHours)
  available    = gross - weekend - holiday - vacation - buffer

  The buffer applies to the post-weekend base, not to gross. Available
  hours are NOT floored at zero: when deductions exceed gross the
  negative value is surfaced, and only presentation layers clamp.

FAIL-CLOSED:
  With weekly hours unset/zero or the buffer unset, available hours are
  undefined. Functions return ok=false rather than a fabricated zero;
  the API boundary renders "not configured".

SEE ALSO:
  - types.go: the records these functions consume
  - grid: per-cell resolution built on the same allocations
*/
package planner

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/capacity-planner/calendar"
)

var (
	hundred = decimal.NewFromInt(100)

	// WeekendAllocated is the sentinel returned by DailyAllocationPercentage
	// for a weekend day that nevertheless carries an allocation. Heatmaps
	// render it as a special case, not as a percentage.
	WeekendAllocated = decimal.NewFromInt(-1)
)

// =============================================================================
// BREAKDOWN - One computation, every component exposed
// =============================================================================

// Breakdown itemizes the capacity computation for one employee and month.
// TotalAvailable is exactly MaxHoursPerMonth minus the four deductions;
// AvailableHours returns the same number.
type Breakdown struct {
	MaxHoursPerMonth decimal.Decimal // gross: calendar days x daily hours
	MaxHoursPerWeek  decimal.Decimal
	MaxHoursPerDay   decimal.Decimal
	WeekendHours     decimal.Decimal
	HolidayHours     decimal.Decimal
	VacationHours    decimal.Decimal
	BufferHours      decimal.Decimal
	TotalAvailable   decimal.Decimal
}

// MonthBreakdown computes the full capacity breakdown for an employee in
// a month. ok is false when settings are incomplete for the employee's
// country; the zero Breakdown must not be interpreted as zero capacity.
func MonthBreakdown(emp Employee, month calendar.Month, holidays []Holiday, vacations []Vacation, settings Settings) (Breakdown, bool) {
	weekly, ok := settings.WeeklyHoursFor(emp.Country)
	if !ok || settings.BufferPct == nil {
		return Breakdown{}, false
	}
	daily := weekly.Div(decimal.NewFromInt(calendar.WorkingDaysPerWeek))

	gross := daily.Mul(decimal.NewFromInt(int64(month.NumDays())))
	weekend := daily.Mul(decimal.NewFromInt(int64(month.WeekendDays())))
	holiday := daily.Mul(decimal.NewFromInt(int64(holidayWeekdays(emp.Country, month, holidays))))
	vacation := daily.Mul(decimal.NewFromInt(int64(vacationWeekdays(emp.ID, month, vacations))))
	buffer := gross.Sub(weekend).Mul(settings.BufferPct.Div(hundred))

	return Breakdown{
		MaxHoursPerMonth: gross,
		MaxHoursPerWeek:  weekly,
		MaxHoursPerDay:   daily,
		WeekendHours:     weekend,
		HolidayHours:     holiday,
		VacationHours:    vacation,
		BufferHours:      buffer,
		TotalAvailable:   gross.Sub(weekend).Sub(holiday).Sub(vacation).Sub(buffer),
	}, true
}

// AvailableHours returns the employee's available hours for the month,
// or ok=false when settings are incomplete.
func AvailableHours(emp Employee, month calendar.Month, holidays []Holiday, vacations []Vacation, settings Settings) (decimal.Decimal, bool) {
	b, ok := MonthBreakdown(emp, month, holidays, vacations, settings)
	if !ok {
		return decimal.Zero, false
	}
	return b.TotalAvailable, true
}

// holidayWeekdays counts holidays applying to the country that fall on a
// non-weekend day inside the month.
func holidayWeekdays(c Country, month calendar.Month, holidays []Holiday) int {
	n := 0
	for _, h := range holidays {
		if !h.AppliesTo(c) || !month.Contains(h.Date) || calendar.IsWeekendDay(h.Date) {
			continue
		}
		n++
	}
	return n
}

// vacationWeekdays counts non-weekend days in the month covered by any
// vacation of the employee. Overlapping vacations count a day once.
func vacationWeekdays(employeeID string, month calendar.Month, vacations []Vacation) int {
	var ranges []calendar.DateRange
	for _, v := range vacations {
		if v.EmployeeID != employeeID {
			continue
		}
		if r, ok := v.Range().Intersect(month.Range()); ok {
			ranges = append(ranges, r)
		}
	}
	if len(ranges) == 0 {
		return 0
	}

	n := 0
	for d := month.First(); d.BeforeOrEqual(month.Last()); d = d.AddDays(1) {
		if calendar.IsWeekendDay(d) {
			continue
		}
		for _, r := range ranges {
			if r.Contains(d) {
				n++
				break
			}
		}
	}
	return n
}

// =============================================================================
// ALLOCATED HOURS
// =============================================================================

// AllocatedHours sums hoursPerDay over the working days each allocation of
// the employee contributes inside the month. Working days exclude weekends
// and holidays applicable to the employee's country; an allocation spanning
// multiple months is pro-rated to the days inside this one.
func AllocatedHours(emp Employee, allocations []Allocation, month calendar.Month, holidays []Holiday) decimal.Decimal {
	offDays := holidayDates(emp.Country, holidays)

	total := decimal.Zero
	for _, a := range allocations {
		if a.EmployeeID != emp.ID {
			continue
		}
		span, ok := a.Range().Intersect(month.Range())
		if !ok {
			continue
		}
		days := int64(0)
		for d := span.Start; d.BeforeOrEqual(span.End); d = d.AddDays(1) {
			if calendar.IsWeekendDay(d) || offDays[d.String()] {
				continue
			}
			days++
		}
		total = total.Add(a.HoursPerDay.Mul(decimal.NewFromInt(days)))
	}
	return total
}

func holidayDates(c Country, holidays []Holiday) map[string]bool {
	dates := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		if h.AppliesTo(c) {
			dates[h.Date.String()] = true
		}
	}
	return dates
}

// =============================================================================
// PERCENTAGES
// =============================================================================

// AllocationPercentage returns allocated/available * 100 for the month.
// When available hours are undefined or not positive it returns zero:
// the percentage is simply not computable, and this function never
// divides by zero and never panics. Values over 100 are valid and
// signal overallocation; clamping is a presentation concern.
func AllocationPercentage(emp Employee, allocations []Allocation, month calendar.Month, holidays []Holiday, vacations []Vacation, settings Settings) decimal.Decimal {
	available, ok := AvailableHours(emp, month, holidays, vacations, settings)
	if !ok || !available.IsPositive() {
		return decimal.Zero
	}
	allocated := AllocatedHours(emp, allocations, month, holidays)
	return allocated.Div(available).Mul(hundred)
}

// DailyAllocationPercentage returns the employee's load for one day.
//
// Holiday and vacation days report zero. Weekend days report the
// WeekendAllocated sentinel when any allocation covers them (heatmaps
// flag "weekend work" instead of showing a percentage), zero otherwise.
// Regular days report the summed hours against the daily norm.
func DailyAllocationPercentage(emp Employee, allocations []Allocation, day calendar.Day, holidays []Holiday, vacations []Vacation, settings Settings) decimal.Decimal {
	var dayHours decimal.Decimal
	covered := false
	for _, a := range allocations {
		if a.EmployeeID == emp.ID && a.Covers(day) {
			covered = true
			dayHours = dayHours.Add(a.HoursPerDay)
		}
	}

	if calendar.IsWeekendDay(day) {
		if covered {
			return WeekendAllocated
		}
		return decimal.Zero
	}

	for _, h := range holidays {
		if h.AppliesTo(emp.Country) && h.Date.Equal(day) {
			return decimal.Zero
		}
	}
	for _, v := range vacations {
		if v.EmployeeID == emp.ID && v.Range().Contains(day) {
			return decimal.Zero
		}
	}

	daily, ok := settings.DailyHoursFor(emp.Country)
	if !ok || !daily.IsPositive() {
		return decimal.Zero
	}
	return dayHours.Div(daily).Mul(hundred)
}

// =============================================================================
// YEAR-TO-DATE COUNTS (informational caches on Employee)
// =============================================================================

// VacationDaysInYear counts distinct non-weekend vacation days for the
// employee within the year.
func VacationDaysInYear(employeeID string, year int, vacations []Vacation) int {
	n := 0
	for m := 1; m <= 12; m++ {
		month := calendar.Month{Year: year, Month: time.Month(m)}
		n += vacationWeekdays(employeeID, month, vacations)
	}
	return n
}

// HolidayDaysInYear counts applicable non-weekend holidays in the year.
func HolidayDaysInYear(c Country, year int, holidays []Holiday) int {
	n := 0
	for _, h := range holidays {
		if h.AppliesTo(c) && h.Date.Year() == year && !calendar.IsWeekendDay(h.Date) {
			n++
		}
	}
	return n
}
