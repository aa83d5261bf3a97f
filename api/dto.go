/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP contract. Dates cross this boundary as
  "YYYY-MM-DD" strings and are parsed at local midnight on the way in.
  Hour quantities are JSON numbers; the one deliberate exception is
  availableHours in the capacity response, which is null when settings
  are incomplete - clients must render "not configured", never 0.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// ERROR ENVELOPE
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// TEAM MEMBERS
// =============================================================================

type TeamMemberDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	Country        string  `json:"country"`
	AllocatedHours float64 `json:"allocatedHours"`
	VacationDays   int     `json:"vacationDays"`
	HolidayDays    int     `json:"holidayDays"`
}

type SaveTeamMemberRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Country string `json:"country"`
}

// =============================================================================
// PROJECTS
// =============================================================================

type ProjectDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	StartDate      *string `json:"startDate,omitempty"`
	EndDate        *string `json:"endDate,omitempty"`
	AllocatedHours float64 `json:"allocatedHours"`
}

type SaveProjectRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

type AllocationDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employeeId"`
	ProjectID   string  `json:"projectId"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	HoursPerDay float64 `json:"hoursPerDay"`
	Status      string  `json:"status"`
}

type CreateAllocationRequest struct {
	EmployeeID  string  `json:"employeeId"`
	ProjectID   string  `json:"projectId"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	HoursPerDay float64 `json:"hoursPerDay"`
	Status      string  `json:"status"`
}

// UpdateAllocationRequest is partial: nil fields are left unchanged.
type UpdateAllocationRequest struct {
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	HoursPerDay *float64 `json:"hoursPerDay"`
	Status      *string  `json:"status"`
}

// =============================================================================
// HOLIDAYS / VACATIONS
// =============================================================================

type HolidayDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Country string `json:"country"`
}

type SaveHolidayRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Country string `json:"country"`
}

type VacationDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Type       string `json:"type"`
}

type SaveVacationRequest struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Type       string `json:"type"`
}

// =============================================================================
// SETTINGS
// =============================================================================

type SettingsDTO struct {
	Configured       bool               `json:"configured"`
	BufferPercentage *float64           `json:"bufferPercentage"`
	WeeklyHours      map[string]float64 `json:"weeklyHoursByCountry"`
}

type SaveSettingsRequest struct {
	BufferPercentage *float64           `json:"bufferPercentage"`
	WeeklyHours      map[string]float64 `json:"weeklyHoursByCountry"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// CAPACITY
// =============================================================================

// CapacityDTO is the engine's monthly breakdown for one employee.
// AvailableHours and Percentage are null when settings are incomplete.
type CapacityDTO struct {
	EmployeeID     string        `json:"employeeId"`
	Month          string        `json:"month"`
	AvailableHours *float64      `json:"availableHours"`
	AllocatedHours float64       `json:"allocatedHours"`
	Percentage     *float64      `json:"percentage"`
	Breakdown      *BreakdownDTO `json:"breakdown,omitempty"`
}

type BreakdownDTO struct {
	MaxHoursPerMonth float64 `json:"maxHoursPerMonth"`
	MaxHoursPerWeek  float64 `json:"maxHoursPerWeek"`
	MaxHoursPerDay   float64 `json:"maxHoursPerDay"`
	WeekendHours     float64 `json:"weekendHours"`
	HolidayHours     float64 `json:"holidayHours"`
	VacationHours    float64 `json:"vacationHours"`
	BufferHours      float64 `json:"bufferHours"`
	TotalAvailable   float64 `json:"totalAvailableHours"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func allocationDTO(a planner.Allocation) AllocationDTO {
	return AllocationDTO{
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		ProjectID:   a.ProjectID,
		StartDate:   a.Start.String(),
		EndDate:     a.End.String(),
		HoursPerDay: a.HoursPerDay.InexactFloat64(),
		Status:      string(a.Status),
	}
}

func holidayDTO(h planner.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Name: h.Name, Date: h.Date.String(), Country: string(h.Country)}
}

func vacationDTO(v planner.Vacation) VacationDTO {
	return VacationDTO{
		ID:         v.ID,
		EmployeeID: v.EmployeeID,
		StartDate:  v.Start.String(),
		EndDate:    v.End.String(),
		Type:       string(v.Type),
	}
}

func projectDTO(p planner.Project, allocatedHours decimal.Decimal) ProjectDTO {
	dto := ProjectDTO{
		ID:             p.ID,
		Name:           p.Name,
		Color:          p.Color,
		AllocatedHours: allocatedHours.InexactFloat64(),
	}
	if p.StartDate != nil {
		s := p.StartDate.String()
		dto.StartDate = &s
	}
	if p.EndDate != nil {
		e := p.EndDate.String()
		dto.EndDate = &e
	}
	return dto
}

func parseOptionalDay(s *string) (*calendar.Day, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := calendar.ParseDay(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
