/*
Package planner provides the capacity-planning domain model and the
allocation arithmetic engine.

PURPOSE:
  Answers the two questions the calendar UI keeps asking: "how many hours
  does this employee have available this month?" and "how many are already
  allocated?". The team spans two countries with different weekly-hour
  norms, so every computation goes through the Settings snapshot.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee/Project/Allocation: the core records (allocations are the
    central mutable entity; everything else is referenced by id)
  - Holiday/Vacation: days that reduce available capacity
  - Settings: buffer percentage + per-country weekly hours

DESIGN PRINCIPLES:
  1. Purity: engine functions read only their arguments, never ambient state
  2. Precision: decimal.Decimal for all hour arithmetic
  3. Fail closed: incomplete settings yield "not configured", never a default

SEE ALSO:
  - engine.go: the arithmetic over these types
  - errors.go: sentinel errors shared with callers
*/
package planner

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/capacity-planner/calendar"
)

// =============================================================================
// COUNTRY
// =============================================================================

// Country identifies which weekly-hour norm applies to an employee.
// Holidays additionally use CountryBoth to apply everywhere.
type Country string

const (
	CountryCanada Country = "Canada"
	CountryBrazil Country = "Brazil"
	CountryBoth   Country = "Both"
)

// Countries lists the employee countries (CountryBoth is holiday-only).
func Countries() []Country {
	return []Country{CountryCanada, CountryBrazil}
}

// =============================================================================
// EMPLOYEE / PROJECT
// =============================================================================

type Employee struct {
	ID      string
	Name    string
	Role    string
	Country Country

	// AllocatedHours is a display cache for the month in view,
	// recomputed after every allocation mutation.
	AllocatedHours decimal.Decimal

	// VacationDays/HolidayDays are informational year-to-date counts.
	VacationDays int
	HolidayDays  int
}

type Project struct {
	ID    string
	Name  string
	Color string

	// Optional project window, display-only.
	StartDate *calendar.Day
	EndDate   *calendar.Day

	// AllocatedHours is cumulative across all employees, informational only.
	AllocatedHours decimal.Decimal
}

// =============================================================================
// ALLOCATION - The central mutable entity
// =============================================================================

type AllocationStatus string

const (
	StatusActive    AllocationStatus = "active"
	StatusCompleted AllocationStatus = "completed"
)

// Allocation assigns an employee to a project for an inclusive date range
// at a fixed hours-per-day rate. HoursPerDay may legitimately be zero for
// allocations landing on weekends or holidays.
//
// IDs are creation-ordered: a smaller numeric id means the allocation was
// created earlier. Rendering relies on this for stable stacking order.
type Allocation struct {
	ID          string
	EmployeeID  string
	ProjectID   string
	Start       calendar.Day
	End         calendar.Day
	HoursPerDay decimal.Decimal
	Status      AllocationStatus
}

// Range returns the allocation's inclusive date range.
func (a Allocation) Range() calendar.DateRange {
	return calendar.DateRange{Start: a.Start, End: a.End}
}

// Covers reports whether the allocation occupies the given day.
func (a Allocation) Covers(d calendar.Day) bool {
	return a.Range().Contains(d)
}

// CompareIDs orders allocation ids by creation order: numerically when both
// parse as integers, lexicographically otherwise (numeric ids sort first).
func CompareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// AllocationDraft is the payload for creating an allocation; the store
// assigns the id.
type AllocationDraft struct {
	EmployeeID  string
	ProjectID   string
	Start       calendar.Day
	End         calendar.Day
	HoursPerDay decimal.Decimal
	Status      AllocationStatus
}

// AllocationPatch is a partial update; nil fields are left unchanged.
type AllocationPatch struct {
	Start       *calendar.Day
	End         *calendar.Day
	HoursPerDay *decimal.Decimal
	Status      *AllocationStatus
}

// Apply returns a copy of the allocation with the patch applied.
func (p AllocationPatch) Apply(a Allocation) Allocation {
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.HoursPerDay != nil {
		a.HoursPerDay = *p.HoursPerDay
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	return a
}

// =============================================================================
// HOLIDAY / VACATION
// =============================================================================

type Holiday struct {
	ID      string
	Name    string
	Date    calendar.Day
	Country Country // CountryBoth applies to everyone
}

// AppliesTo reports whether the holiday applies to an employee country.
func (h Holiday) AppliesTo(c Country) bool {
	return h.Country == CountryBoth || h.Country == c
}

type VacationType string

const (
	VacationRegular      VacationType = "vacation"
	VacationSick         VacationType = "sick"
	VacationPersonal     VacationType = "personal"
	VacationOther        VacationType = "other"
	VacationCompensation VacationType = "compensation"
)

// Vacation is an inclusive block of time off for one employee.
// Overlapping vacations for the same employee are permitted; a covered
// day counts once toward capacity deduction.
type Vacation struct {
	ID         string
	EmployeeID string
	Start      calendar.Day
	End        calendar.Day
	Type       VacationType
}

// Range returns the vacation's inclusive date range.
func (v Vacation) Range() calendar.DateRange {
	return calendar.DateRange{Start: v.Start, End: v.End}
}

// =============================================================================
// SETTINGS - Process-wide configuration snapshot
// =============================================================================

// Settings is read on every computation; callers pass a fresh snapshot
// after any settings-changed signal. A nil BufferPct or a missing/zero
// weekly-hours entry makes available hours undefined (fail closed).
type Settings struct {
	BufferPct   *decimal.Decimal
	WeeklyHours map[Country]decimal.Decimal
}

// WeeklyHoursFor returns the weekly-hour norm for a country.
// The second result is false when the norm is unset or zero.
func (s Settings) WeeklyHoursFor(c Country) (decimal.Decimal, bool) {
	h, ok := s.WeeklyHours[c]
	if !ok || h.IsZero() {
		return decimal.Zero, false
	}
	return h, true
}

// DailyHoursFor returns weekly hours divided across the working week.
func (s Settings) DailyHoursFor(c Country) (decimal.Decimal, bool) {
	weekly, ok := s.WeeklyHoursFor(c)
	if !ok {
		return decimal.Zero, false
	}
	return weekly.Div(decimal.NewFromInt(calendar.WorkingDaysPerWeek)), true
}

// Configured reports whether the settings are complete enough to compute
// available hours for the given country.
func (s Settings) Configured(c Country) bool {
	if s.BufferPct == nil {
		return false
	}
	_, ok := s.WeeklyHoursFor(c)
	return ok
}
