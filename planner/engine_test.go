package planner_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(s string) calendar.Day { return calendar.MustParseDay(s) }

func month(s string) calendar.Month {
	m, err := calendar.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func canadian(id string) planner.Employee {
	return planner.Employee{ID: id, Name: id, Role: "Developer", Country: planner.CountryCanada}
}

// testSettings: Canada 37.5h/week, Brazil 44h/week, 10% buffer.
func testSettings() planner.Settings {
	buffer := dec("10")
	return planner.Settings{
		BufferPct: &buffer,
		WeeklyHours: map[planner.Country]decimal.Decimal{
			planner.CountryCanada: dec("37.5"),
			planner.CountryBrazil: dec("44"),
		},
	}
}

func alloc(id, employeeID string, start, end string, hoursPerDay string) planner.Allocation {
	return planner.Allocation{
		ID:          id,
		EmployeeID:  employeeID,
		ProjectID:   "proj",
		Start:       day(start),
		End:         day(end),
		HoursPerDay: dec(hoursPerDay),
		Status:      planner.StatusActive,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got.String())
}

// =============================================================================
// AVAILABLE HOURS AND BREAKDOWN
// =============================================================================

func TestMonthBreakdown_FullWorkedExample(t *testing.T) {
	// GIVEN: 37.5h/week, a 30-day month with 8 weekend days (June 2026),
	//        one weekday holiday, 10% buffer, no vacations
	// THEN: daily 7.5, gross 225, weekend 60, holiday 7.5,
	//       buffer 16.5 (10% of 165), available 141

	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Company Day", Date: day("2026-06-10"), Country: planner.CountryCanada},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), holidays, nil, testSettings())
	require.True(t, ok)

	assertDecimal(t, "7.5", b.MaxHoursPerDay)
	assertDecimal(t, "37.5", b.MaxHoursPerWeek)
	assertDecimal(t, "225", b.MaxHoursPerMonth)
	assertDecimal(t, "60", b.WeekendHours)
	assertDecimal(t, "7.5", b.HolidayHours)
	assertDecimal(t, "0", b.VacationHours)
	assertDecimal(t, "16.5", b.BufferHours)
	assertDecimal(t, "141", b.TotalAvailable)
}

func TestMonthBreakdown_ComponentsSumToTotal(t *testing.T) {
	// The itemized deductions must reproduce TotalAvailable exactly.

	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Holiday", Date: day("2026-06-10"), Country: planner.CountryBoth},
	}
	vacations := []planner.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-15"), End: day("2026-06-19"), Type: planner.VacationRegular},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), holidays, vacations, testSettings())
	require.True(t, ok)

	sum := b.MaxHoursPerMonth.
		Sub(b.WeekendHours).
		Sub(b.HolidayHours).
		Sub(b.VacationHours).
		Sub(b.BufferHours)
	assert.True(t, sum.Equal(b.TotalAvailable), "breakdown must be internally consistent")

	available, ok := planner.AvailableHours(emp, month("2026-06"), holidays, vacations, testSettings())
	require.True(t, ok)
	assert.True(t, available.Equal(b.TotalAvailable))
}

func TestMonthBreakdown_WeekendHolidayDoesNotDeduct(t *testing.T) {
	// GIVEN: A holiday on a Saturday
	// THEN: Holiday hours stay zero (the day was never workable)

	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Saturday Holiday", Date: day("2026-06-06"), Country: planner.CountryCanada},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), holidays, nil, testSettings())
	require.True(t, ok)
	assertDecimal(t, "0", b.HolidayHours)
}

func TestMonthBreakdown_HolidayCountryScoping(t *testing.T) {
	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Carnival", Date: day("2026-06-10"), Country: planner.CountryBrazil},
		{ID: "h2", Name: "Shared", Date: day("2026-06-11"), Country: planner.CountryBoth},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), holidays, nil, testSettings())
	require.True(t, ok)

	// Only the shared holiday applies to a Canadian employee.
	assertDecimal(t, "7.5", b.HolidayHours)
}

func TestMonthBreakdown_OverlappingVacationsCountDaysOnce(t *testing.T) {
	// GIVEN: Two vacations both covering June 15-17
	// THEN: Each weekday deducts once

	emp := canadian("emp-1")
	vacations := []planner.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-15"), End: day("2026-06-17"), Type: planner.VacationRegular},
		{ID: "v2", EmployeeID: "emp-1", Start: day("2026-06-16"), End: day("2026-06-19"), Type: planner.VacationSick},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, vacations, testSettings())
	require.True(t, ok)

	// June 15-19 is Monday through Friday: 5 distinct weekdays.
	assertDecimal(t, "37.5", b.VacationHours)
}

func TestMonthBreakdown_VacationSpanningMonthsProRated(t *testing.T) {
	emp := canadian("emp-1")
	vacations := []planner.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-29"), End: day("2026-07-03"), Type: planner.VacationRegular},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, vacations, testSettings())
	require.True(t, ok)

	// Only June 29-30 (Mon, Tue) fall inside June.
	assertDecimal(t, "15", b.VacationHours)
}

func TestMonthBreakdown_NotFlooredAtZero(t *testing.T) {
	// GIVEN: A full month of vacation
	// THEN: Available hours go negative rather than clamping

	emp := canadian("emp-1")
	vacations := []planner.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-01"), End: day("2026-06-30"), Type: planner.VacationRegular},
	}

	b, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, vacations, testSettings())
	require.True(t, ok)
	assert.True(t, b.TotalAvailable.IsNegative(), "got %s", b.TotalAvailable)
}

func TestMonthBreakdown_FailClosed(t *testing.T) {
	emp := canadian("emp-1")

	t.Run("no buffer configured", func(t *testing.T) {
		settings := testSettings()
		settings.BufferPct = nil
		_, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, nil, settings)
		assert.False(t, ok)
	})

	t.Run("no weekly hours for country", func(t *testing.T) {
		settings := testSettings()
		delete(settings.WeeklyHours, planner.CountryCanada)
		_, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, nil, settings)
		assert.False(t, ok)
	})

	t.Run("zero weekly hours", func(t *testing.T) {
		settings := testSettings()
		settings.WeeklyHours[planner.CountryCanada] = decimal.Zero
		_, ok := planner.MonthBreakdown(emp, month("2026-06"), nil, nil, settings)
		assert.False(t, ok)
	})
}

// =============================================================================
// ALLOCATED HOURS
// =============================================================================

func TestAllocatedHours_SkipsWeekendsAndHolidays(t *testing.T) {
	// GIVEN: An allocation over June 8-14 (Mon-Sun) at 6h/day with a
	//        holiday on June 10
	// THEN: Only Mon, Tue, Thu, Fri count: 4 days x 6h

	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Holiday", Date: day("2026-06-10"), Country: planner.CountryCanada},
	}
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-08", "2026-06-14", "6"),
	}

	got := planner.AllocatedHours(emp, allocations, month("2026-06"), holidays)
	assertDecimal(t, "24", got)
}

func TestAllocatedHours_ProRatesAcrossMonthBoundary(t *testing.T) {
	// GIVEN: An allocation spanning June 29 - July 3 at 8h/day
	// THEN: June only counts June 29-30 (two weekdays)

	emp := canadian("emp-1")
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-29", "2026-07-03", "8"),
	}

	assertDecimal(t, "16", planner.AllocatedHours(emp, allocations, month("2026-06"), nil))
	// July gets the remaining three weekdays.
	assertDecimal(t, "24", planner.AllocatedHours(emp, allocations, month("2026-07"), nil))
}

func TestAllocatedHours_IgnoresOtherEmployees(t *testing.T) {
	emp := canadian("emp-1")
	allocations := []planner.Allocation{
		alloc("1", "emp-2", "2026-06-08", "2026-06-12", "8"),
	}
	assertDecimal(t, "0", planner.AllocatedHours(emp, allocations, month("2026-06"), nil))
}

func TestAllocatedHours_SumsOverlappingAllocations(t *testing.T) {
	emp := canadian("emp-1")
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-08", "2026-06-12", "4"),
		alloc("2", "emp-1", "2026-06-10", "2026-06-12", "3"),
	}
	// 5 weekdays x 4h + 3 weekdays x 3h
	assertDecimal(t, "29", planner.AllocatedHours(emp, allocations, month("2026-06"), nil))
}

// =============================================================================
// PERCENTAGES
// =============================================================================

func TestAllocationPercentage_NeverDividesByZero(t *testing.T) {
	emp := canadian("emp-1")
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-08", "2026-06-12", "8"),
	}

	t.Run("unconfigured settings", func(t *testing.T) {
		got := planner.AllocationPercentage(emp, allocations, month("2026-06"), nil, nil, planner.Settings{})
		assertDecimal(t, "0", got)
	})

	t.Run("negative available hours", func(t *testing.T) {
		vacations := []planner.Vacation{
			{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-01"), End: day("2026-06-30"), Type: planner.VacationRegular},
		}
		got := planner.AllocationPercentage(emp, allocations, month("2026-06"), nil, vacations, testSettings())
		assertDecimal(t, "0", got)
	})
}

func TestAllocationPercentage_CanExceedHundred(t *testing.T) {
	// GIVEN: Available 141h (worked example) and 12h/day for all 21 weekdays
	// THEN: The percentage exceeds 100 and is reported as-is

	emp := canadian("emp-1")
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Holiday", Date: day("2026-06-10"), Country: planner.CountryCanada},
	}
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-01", "2026-06-30", "12"),
	}

	got := planner.AllocationPercentage(emp, allocations, month("2026-06"), holidays, nil, testSettings())
	assert.True(t, got.GreaterThan(dec("100")), "got %s", got)
}

func TestDailyAllocationPercentage(t *testing.T) {
	emp := canadian("emp-1")
	settings := testSettings()
	allocations := []planner.Allocation{
		alloc("1", "emp-1", "2026-06-08", "2026-06-14", "6"),
	}
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Holiday", Date: day("2026-06-10"), Country: planner.CountryCanada},
	}
	vacations := []planner.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-06-11"), End: day("2026-06-11"), Type: planner.VacationRegular},
	}

	t.Run("regular day", func(t *testing.T) {
		got := planner.DailyAllocationPercentage(emp, allocations, day("2026-06-08"), holidays, vacations, settings)
		assertDecimal(t, "80", got) // 6 / 7.5
	})

	t.Run("holiday reports zero", func(t *testing.T) {
		got := planner.DailyAllocationPercentage(emp, allocations, day("2026-06-10"), holidays, vacations, settings)
		assertDecimal(t, "0", got)
	})

	t.Run("vacation day reports zero", func(t *testing.T) {
		got := planner.DailyAllocationPercentage(emp, allocations, day("2026-06-11"), holidays, vacations, settings)
		assertDecimal(t, "0", got)
	})

	t.Run("allocated weekend reports sentinel", func(t *testing.T) {
		got := planner.DailyAllocationPercentage(emp, allocations, day("2026-06-13"), holidays, vacations, settings)
		assert.True(t, got.Equal(planner.WeekendAllocated))
	})

	t.Run("free weekend reports zero", func(t *testing.T) {
		got := planner.DailyAllocationPercentage(emp, allocations, day("2026-06-20"), holidays, vacations, settings)
		assertDecimal(t, "0", got)
	})
}

// =============================================================================
// YEAR-TO-DATE COUNTS
// =============================================================================

func TestVacationDaysInYear_CountsWeekdaysOnce(t *testing.T) {
	vacations := []planner.Vacation{
		// Mon-Fri
		{ID: "v1", EmployeeID: "emp-1", Start: day("2026-03-02"), End: day("2026-03-06"), Type: planner.VacationRegular},
		// Overlaps v1 on Thu-Fri, adds the next Mon
		{ID: "v2", EmployeeID: "emp-1", Start: day("2026-03-05"), End: day("2026-03-09"), Type: planner.VacationSick},
		// Different employee
		{ID: "v3", EmployeeID: "emp-2", Start: day("2026-03-02"), End: day("2026-03-06"), Type: planner.VacationRegular},
	}

	assert.Equal(t, 6, planner.VacationDaysInYear("emp-1", 2026, vacations))
	assert.Equal(t, 0, planner.VacationDaysInYear("emp-1", 2025, vacations))
}

func TestHolidayDaysInYear(t *testing.T) {
	holidays := []planner.Holiday{
		{ID: "h1", Name: "Weekday CA", Date: day("2026-06-10"), Country: planner.CountryCanada},
		{ID: "h2", Name: "Weekend CA", Date: day("2026-06-06"), Country: planner.CountryCanada},
		{ID: "h3", Name: "Weekday BR", Date: day("2026-06-11"), Country: planner.CountryBrazil},
		{ID: "h4", Name: "Shared", Date: day("2026-12-25"), Country: planner.CountryBoth},
		{ID: "h5", Name: "Prior Year", Date: day("2025-12-25"), Country: planner.CountryBoth},
	}

	assert.Equal(t, 2, planner.HolidayDaysInYear(planner.CountryCanada, 2026, holidays))
	assert.Equal(t, 2, planner.HolidayDaysInYear(planner.CountryBrazil, 2026, holidays))
}
