/*
handlers.go - HTTP API handlers for the capacity planner

PURPOSE:
  Exposes the planning store and the allocation arithmetic engine via
  REST. Handles HTTP request/response and JSON serialization, delegates
  all math to the planner package.

ENDPOINTS:
  Team members:
    GET    /api/team-members                 List (with computed hour caches)
    PUT    /api/team-members                 Create/update
    GET    /api/team-members/{id}            Get one
    GET    /api/team-members/{id}/capacity   Monthly capacity breakdown
    DELETE /api/team-members/{id}            Delete

  Projects, allocations, holidays, vacations: plain CRUD.
  Settings: GET/PUT singleton.
  Export:   GET /api/export (xlsx), GET /api/export/allocations.csv,
            POST /api/import (xlsx, replaces the dataset)
  Health:   GET /api/health
  Scenarios: demo data loaders (see scenarios.go)

ERROR HANDLING:
  - 400: validation errors, invalid input
  - 404: record not found
  - 500: store failures

CHANGE SIGNALS:
  Every successful mutation publishes the matching zero-payload signal
  (team-changed, allocation-changed, ...) so open views recompute.

SEE ALSO:
  - dto.go: request/response structures
  - server.go: router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/export"
	"github.com/warp/capacity-planner/filter"
	"github.com/warp/capacity-planner/planner"
	"github.com/warp/capacity-planner/signal"
	"github.com/warp/capacity-planner/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Bus   *signal.Bus

	currentScenario string
}

// NewHandler creates a handler over the store, publishing change signals
// on the bus.
func NewHandler(store *sqlite.Store, bus *signal.Bus) *Handler {
	return &Handler{Store: store, Bus: bus}
}

func (h *Handler) publish(t signal.Topic) {
	if h.Bus != nil {
		h.Bus.Publish(t)
	}
}

// =============================================================================
// TEAM MEMBER HANDLERS
// =============================================================================

// ListTeamMembers returns all employees with their computed hour caches
// for the requested month (default: current).
func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	members, err := h.Store.ListTeamMembers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list team members", err)
		return
	}
	allocations, err := h.Store.ListAllocations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	vacations, err := h.Store.ListVacations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}

	if query := r.URL.Query().Get("search"); query != "" {
		projects, err := h.Store.ListProjects(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
			return
		}
		roles := make([]string, 0, len(members))
		for _, e := range members {
			roles = append(roles, e.Role)
		}
		filters := filter.Parse(query, projects, roles)
		kept := members[:0]
		for _, e := range members {
			if filters.Match(e, allocations, projects) {
				kept = append(kept, e)
			}
		}
		members = kept
	}

	dtos := make([]TeamMemberDTO, len(members))
	for i, e := range members {
		dtos[i] = TeamMemberDTO{
			ID:             e.ID,
			Name:           e.Name,
			Role:           e.Role,
			Country:        string(e.Country),
			AllocatedHours: planner.AllocatedHours(e, allocations, month, holidays).InexactFloat64(),
			VacationDays:   planner.VacationDaysInYear(e.ID, month.Year, vacations),
			HolidayDays:    planner.HolidayDaysInYear(e.Country, month.Year, holidays),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTeamMember returns a single employee.
func (h *Handler) GetTeamMember(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetTeamMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get team member", err)
		return
	}
	writeJSON(w, http.StatusOK, TeamMemberDTO{
		ID: e.ID, Name: e.Name, Role: e.Role, Country: string(e.Country),
	})
}

// SaveTeamMember creates or updates an employee.
func (h *Handler) SaveTeamMember(w http.ResponseWriter, r *http.Request) {
	var req SaveTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	e := planner.Employee{
		ID:      req.ID,
		Name:    req.Name,
		Role:    req.Role,
		Country: planner.Country(req.Country),
	}
	if err := h.Store.SaveTeamMember(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save team member", err)
		return
	}
	h.publish(signal.TeamChanged)
	writeJSON(w, http.StatusOK, TeamMemberDTO{
		ID: e.ID, Name: e.Name, Role: e.Role, Country: string(e.Country),
	})
}

// DeleteTeamMember removes an employee.
func (h *Handler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete team member", err)
		return
	}
	h.publish(signal.TeamChanged)
	w.WriteHeader(http.StatusNoContent)
}

// GetCapacity returns the monthly capacity breakdown for an employee.
// availableHours/percentage are null when settings are incomplete.
func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	emp, err := h.Store.GetTeamMember(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get team member", err)
		return
	}
	allocations, err := h.Store.ListAllocationsForEmployee(ctx, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	vacations, err := h.Store.ListVacations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}
	settings, _, err := h.Store.GetSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	allocated := planner.AllocatedHours(emp, allocations, month, holidays)
	dto := CapacityDTO{
		EmployeeID:     emp.ID,
		Month:          month.String(),
		AllocatedHours: allocated.InexactFloat64(),
	}
	if breakdown, ok := planner.MonthBreakdown(emp, month, holidays, vacations, settings); ok {
		available := breakdown.TotalAvailable.InexactFloat64()
		dto.AvailableHours = &available
		pct := planner.AllocationPercentage(emp, allocations, month, holidays, vacations, settings).InexactFloat64()
		dto.Percentage = &pct
		dto.Breakdown = &BreakdownDTO{
			MaxHoursPerMonth: breakdown.MaxHoursPerMonth.InexactFloat64(),
			MaxHoursPerWeek:  breakdown.MaxHoursPerWeek.InexactFloat64(),
			MaxHoursPerDay:   breakdown.MaxHoursPerDay.InexactFloat64(),
			WeekendHours:     breakdown.WeekendHours.InexactFloat64(),
			HolidayHours:     breakdown.HolidayHours.InexactFloat64(),
			VacationHours:    breakdown.VacationHours.InexactFloat64(),
			BufferHours:      breakdown.BufferHours.InexactFloat64(),
			TotalAvailable:   breakdown.TotalAvailable.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects with informational cumulative hours.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.Store.ListProjects(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	allocations, err := h.Store.ListAllocations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}

	totals := make(map[string]decimal.Decimal)
	for _, a := range allocations {
		days := 0
		for d := a.Start; d.BeforeOrEqual(a.End); d = d.AddDays(1) {
			if !calendar.IsWeekendDay(d) {
				days++
			}
		}
		totals[a.ProjectID] = totals[a.ProjectID].Add(
			a.HoursPerDay.Mul(decimal.NewFromInt(int64(days))))
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = projectDTO(p, totals[p.ID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveProject creates or updates a project.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	start, err := parseOptionalDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := parseOptionalDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	p, err := h.Store.SaveProject(r.Context(), planner.Project{
		ID: req.ID, Name: req.Name, Color: req.Color, StartDate: start, EndDate: end,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save project", err)
		return
	}
	h.publish(signal.TeamChanged)
	writeJSON(w, http.StatusOK, projectDTO(p, decimal.Zero))
}

// DeleteProject removes a project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete project", err)
		return
	}
	h.publish(signal.TeamChanged)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// ListAllocations returns allocations in creation order, optionally
// filtered by ?employeeId=.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		allocations []planner.Allocation
		err         error
	)
	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		allocations, err = h.Store.ListAllocationsForEmployee(ctx, employeeID)
	} else {
		allocations, err = h.Store.ListAllocations(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}

	dtos := make([]AllocationDTO, len(allocations))
	for i, a := range allocations {
		dtos[i] = allocationDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAllocation creates an allocation.
func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := calendar.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := calendar.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	created, err := h.Store.CreateAllocation(r.Context(), planner.AllocationDraft{
		EmployeeID:  req.EmployeeID,
		ProjectID:   req.ProjectID,
		Start:       start,
		End:         end,
		HoursPerDay: decimal.NewFromFloat(req.HoursPerDay),
		Status:      planner.AllocationStatus(req.Status),
	})
	if err != nil {
		writeStoreError(w, "Failed to create allocation", err)
		return
	}
	h.publish(signal.AllocationChanged)
	writeJSON(w, http.StatusCreated, allocationDTO(created))
}

// UpdateAllocation applies a partial update.
func (h *Handler) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch planner.AllocationPatch
	start, err := parseOptionalDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	patch.Start = start
	end, err := parseOptionalDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}
	patch.End = end
	if req.HoursPerDay != nil {
		hours := decimal.NewFromFloat(*req.HoursPerDay)
		patch.HoursPerDay = &hours
	}
	if req.Status != nil {
		status := planner.AllocationStatus(*req.Status)
		patch.Status = &status
	}

	updated, err := h.Store.UpdateAllocation(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, "Failed to update allocation", err)
		return
	}
	h.publish(signal.AllocationChanged)
	writeJSON(w, http.StatusOK, allocationDTO(updated))
}

// DeleteAllocation removes an allocation.
func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAllocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete allocation", err)
		return
	}
	h.publish(signal.AllocationChanged)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY / VACATION HANDLERS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = holidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveHoliday(w http.ResponseWriter, r *http.Request) {
	var req SaveHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	saved, err := h.Store.SaveHoliday(r.Context(), planner.Holiday{
		ID: req.ID, Name: req.Name, Date: date, Country: planner.Country(req.Country),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	h.publish(signal.HolidaysChanged)
	writeJSON(w, http.StatusOK, holidayDTO(saved))
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete holiday", err)
		return
	}
	h.publish(signal.HolidaysChanged)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	vacations, err := h.Store.ListVacations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}
	dtos := make([]VacationDTO, len(vacations))
	for i, v := range vacations {
		dtos[i] = vacationDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveVacation(w http.ResponseWriter, r *http.Request) {
	var req SaveVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := calendar.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := calendar.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}
	saved, err := h.Store.SaveVacation(r.Context(), planner.Vacation{
		ID: req.ID, EmployeeID: req.EmployeeID, Start: start, End: end,
		Type: planner.VacationType(req.Type),
	})
	if err != nil {
		writeStoreError(w, "Failed to save vacation", err)
		return
	}
	h.publish(signal.VacationsChanged)
	writeJSON(w, http.StatusOK, vacationDTO(saved))
}

func (h *Handler) DeleteVacation(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteVacation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete vacation", err)
		return
	}
	h.publish(signal.VacationsChanged)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current settings. configured=false means
// available hours are undefined everywhere.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, ok, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	dto := SettingsDTO{Configured: ok, WeeklyHours: map[string]float64{}}
	if ok {
		if settings.BufferPct != nil {
			buffer := settings.BufferPct.InexactFloat64()
			dto.BufferPercentage = &buffer
		}
		for country, hours := range settings.WeeklyHours {
			dto.WeeklyHours[string(country)] = hours.InexactFloat64()
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// SaveSettings replaces the settings and signals a global recompute.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req SaveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BufferPercentage != nil && (*req.BufferPercentage < 0 || *req.BufferPercentage > 100) {
		writeError(w, http.StatusBadRequest, "bufferPercentage must be within 0-100", nil)
		return
	}

	settings := planner.Settings{WeeklyHours: make(map[planner.Country]decimal.Decimal)}
	if req.BufferPercentage != nil {
		buffer := decimal.NewFromFloat(*req.BufferPercentage)
		settings.BufferPct = &buffer
	}
	for country, hours := range req.WeeklyHours {
		settings.WeeklyHours[planner.Country(country)] = decimal.NewFromFloat(hours)
	}

	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	h.publish(signal.SettingsChanged)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EXPORT / IMPORT / HEALTH
// =============================================================================

// ExportWorkbook streams the whole dataset as an xlsx workbook.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write workbook", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="capacity-planner.xlsx"`)
	w.Write(buf.Bytes())
}

// ExportAllocationsCSV streams the allocation list as CSV.
func (h *Handler) ExportAllocationsCSV(w http.ResponseWriter, r *http.Request) {
	allocations, err := h.Store.ListAllocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="allocations.csv"`)
	if err := export.WriteAllocationsCSV(w, allocations); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write csv", err)
	}
}

// ImportWorkbook replaces the dataset with the uploaded workbook.
func (h *Handler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := export.ReadXLSX(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid workbook", err)
		return
	}

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	for _, e := range snap.TeamMembers {
		if err := h.Store.SaveTeamMember(ctx, e); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import team members", err)
			return
		}
	}
	for _, p := range snap.Projects {
		if _, err := h.Store.SaveProject(ctx, p); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import projects", err)
			return
		}
	}
	for _, a := range snap.Allocations {
		draft := planner.AllocationDraft{
			EmployeeID: a.EmployeeID, ProjectID: a.ProjectID,
			Start: a.Start, End: a.End, HoursPerDay: a.HoursPerDay, Status: a.Status,
		}
		if _, err := h.Store.CreateAllocation(ctx, draft); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import allocations", err)
			return
		}
	}
	for _, hol := range snap.Holidays {
		if _, err := h.Store.SaveHoliday(ctx, hol); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import holidays", err)
			return
		}
	}
	for _, v := range snap.Vacations {
		if _, err := h.Store.SaveVacation(ctx, v); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import vacations", err)
			return
		}
	}
	if snap.HasSettings {
		if err := h.Store.SaveSettings(ctx, snap.Settings); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to import settings", err)
			return
		}
	}

	h.publish(signal.TeamChanged)
	h.publish(signal.AllocationChanged)
	h.publish(signal.HolidaysChanged)
	h.publish(signal.VacationsChanged)
	h.publish(signal.SettingsChanged)
	writeJSON(w, http.StatusOK, map[string]any{
		"teamMembers": len(snap.TeamMembers),
		"projects":    len(snap.Projects),
		"allocations": len(snap.Allocations),
		"holidays":    len(snap.Holidays),
		"vacations":   len(snap.Vacations),
	})
}

// ImportAllocationsCSV appends allocations from an uploaded CSV. Unlike
// ImportWorkbook it does not reset the store; rows get fresh ids.
func (h *Handler) ImportAllocationsCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	allocations, err := export.ReadAllocationsCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid CSV", err)
		return
	}

	for _, a := range allocations {
		draft := planner.AllocationDraft{
			EmployeeID: a.EmployeeID, ProjectID: a.ProjectID,
			Start: a.Start, End: a.End, HoursPerDay: a.HoursPerDay, Status: a.Status,
		}
		if _, err := h.Store.CreateAllocation(ctx, draft); err != nil {
			writeStoreError(w, "Failed to import allocations", err)
			return
		}
	}

	h.publish(signal.AllocationChanged)
	writeJSON(w, http.StatusOK, map[string]any{"allocations": len(allocations)})
}

// Health reports store connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Store unreachable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) snapshot(r *http.Request) (export.Snapshot, error) {
	ctx := r.Context()
	var snap export.Snapshot
	var err error
	if snap.TeamMembers, err = h.Store.ListTeamMembers(ctx); err != nil {
		return export.Snapshot{}, err
	}
	if snap.Projects, err = h.Store.ListProjects(ctx); err != nil {
		return export.Snapshot{}, err
	}
	if snap.Allocations, err = h.Store.ListAllocations(ctx); err != nil {
		return export.Snapshot{}, err
	}
	if snap.Holidays, err = h.Store.ListHolidays(ctx); err != nil {
		return export.Snapshot{}, err
	}
	if snap.Vacations, err = h.Store.ListVacations(ctx); err != nil {
		return export.Snapshot{}, err
	}
	snap.Settings, snap.HasSettings, err = h.Store.GetSettings(ctx)
	if err != nil {
		return export.Snapshot{}, err
	}
	return snap, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func monthParam(r *http.Request) (calendar.Month, error) {
	if s := r.URL.Query().Get("month"); s != "" {
		return calendar.ParseMonth(s)
	}
	return calendar.MonthOf(calendar.Today()), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, planner.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case planner.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
