/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates team members,
	projects, allocations, holidays, vacations, and settings that
	demonstrate specific planner behaviors.

AVAILABLE SCENARIOS:

	two-country-team:  Canada + Brazil roster with holidays and vacations
	busy-quarter:      Overlapping allocations on a single designer
	fresh-workspace:   Empty dataset with unconfigured settings

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save settings (except fresh-workspace, which leaves them unset)
 3. Create team members and projects
 4. Create allocations, holidays, and vacations

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "two-country-team"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: CRUD handlers used by the loaders
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
	"github.com/warp/capacity-planner/signal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "two-country-team",
		Name:        "Two-Country Team",
		Description: "Canada and Brazil roster with holidays, vacations, and a full month of allocations",
	},
	{
		ID:          "busy-quarter",
		Name:        "Busy Quarter",
		Description: "One designer stacked with overlapping allocations to exercise the overlap resolver",
	},
	{
		ID:          "fresh-workspace",
		Name:        "Fresh Workspace",
		Description: "Empty dataset with settings unconfigured (available hours undefined)",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "two-country-team":
		err = h.loadTwoCountryTeamScenario(ctx)
	case "busy-quarter":
		err = h.loadBusyQuarterScenario(ctx)
	case "fresh-workspace":
		// Reset already produced the empty, unconfigured state.
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.publish(signal.TeamChanged)
	h.publish(signal.AllocationChanged)
	h.publish(signal.HolidaysChanged)
	h.publish(signal.VacationsChanged)
	h.publish(signal.SettingsChanged)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	h.publish(signal.TeamChanged)
	h.publish(signal.AllocationChanged)
	h.publish(signal.HolidaysChanged)
	h.publish(signal.VacationsChanged)
	h.publish(signal.SettingsChanged)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadTwoCountryTeamScenario(ctx context.Context) error {
	year := time.Now().Year()
	month := time.Now().Month()
	first := calendar.NewDay(year, month, 1)
	last := calendar.MonthOf(first).Last()

	buffer := decimal.NewFromInt(10)
	settings := planner.Settings{
		BufferPct: &buffer,
		WeeklyHours: map[planner.Country]decimal.Decimal{
			planner.CountryCanada: decimal.RequireFromString("37.5"),
			planner.CountryBrazil: decimal.NewFromInt(44),
		},
	}
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	members := []planner.Employee{
		{ID: "alice", Name: "Alice Tremblay", Role: "Designer", Country: planner.CountryCanada},
		{ID: "bruno", Name: "Bruno Costa", Role: "Developer", Country: planner.CountryBrazil},
		{ID: "carol", Name: "Carol Nguyen", Role: "Developer", Country: planner.CountryCanada},
		{ID: "diego", Name: "Diego Ramos", Role: "Designer", Country: planner.CountryBrazil},
	}
	for _, e := range members {
		if err := h.Store.SaveTeamMember(ctx, e); err != nil {
			return err
		}
	}

	projects := []planner.Project{
		{ID: "website", Name: "Website Redesign", Color: "#4f8ef7"},
		{ID: "mobile", Name: "Mobile App", Color: "#f78e4f"},
		{ID: "internal", Name: "Internal Tools", Color: "#6fbf73"},
	}
	for _, p := range projects {
		if _, err := h.Store.SaveProject(ctx, p); err != nil {
			return err
		}
	}

	holidays := []planner.Holiday{
		{Name: "Company Day", Date: first.AddDays(9), Country: planner.CountryBoth},
		{Name: "Provincial Holiday", Date: first.AddDays(16), Country: planner.CountryCanada},
	}
	for _, hol := range holidays {
		if _, err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}

	vacations := []planner.Vacation{
		{EmployeeID: "bruno", Start: first.AddDays(2), End: first.AddDays(4), Type: planner.VacationRegular},
	}
	for _, v := range vacations {
		if _, err := h.Store.SaveVacation(ctx, v); err != nil {
			return err
		}
	}

	drafts := []planner.AllocationDraft{
		{EmployeeID: "alice", ProjectID: "website", Start: first, End: first.AddDays(13), HoursPerDay: decimal.NewFromInt(6), Status: planner.StatusActive},
		{EmployeeID: "alice", ProjectID: "internal", Start: first.AddDays(7), End: last, HoursPerDay: decimal.NewFromInt(2), Status: planner.StatusActive},
		{EmployeeID: "bruno", ProjectID: "mobile", Start: first, End: last, HoursPerDay: decimal.NewFromInt(8), Status: planner.StatusActive},
		{EmployeeID: "carol", ProjectID: "website", Start: first.AddDays(4), End: first.AddDays(18), HoursPerDay: decimal.NewFromInt(7), Status: planner.StatusActive},
		{EmployeeID: "diego", ProjectID: "mobile", Start: first.AddDays(9), End: last, HoursPerDay: decimal.NewFromInt(4), Status: planner.StatusActive},
	}
	for _, d := range drafts {
		if _, err := h.Store.CreateAllocation(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadBusyQuarterScenario(ctx context.Context) error {
	year := time.Now().Year()
	month := time.Now().Month()
	first := calendar.NewDay(year, month, 1)

	buffer := decimal.NewFromInt(15)
	settings := planner.Settings{
		BufferPct: &buffer,
		WeeklyHours: map[planner.Country]decimal.Decimal{
			planner.CountryCanada: decimal.NewFromInt(40),
		},
	}
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	if err := h.Store.SaveTeamMember(ctx, planner.Employee{
		ID: "nadia", Name: "Nadia Petrov", Role: "Designer", Country: planner.CountryCanada,
	}); err != nil {
		return err
	}

	projects := []planner.Project{
		{ID: "brand", Name: "Brand Refresh", Color: "#d46fb3"},
		{ID: "landing", Name: "Landing Pages", Color: "#6fb3d4"},
		{ID: "audit", Name: "UX Audit", Color: "#b3d46f"},
	}
	for _, p := range projects {
		if _, err := h.Store.SaveProject(ctx, p); err != nil {
			return err
		}
	}

	// Three projects on the same days so every cell is multi-block.
	drafts := []planner.AllocationDraft{
		{EmployeeID: "nadia", ProjectID: "brand", Start: first, End: first.AddDays(20), HoursPerDay: decimal.NewFromInt(4), Status: planner.StatusActive},
		{EmployeeID: "nadia", ProjectID: "landing", Start: first.AddDays(3), End: first.AddDays(15), HoursPerDay: decimal.NewFromInt(3), Status: planner.StatusActive},
		{EmployeeID: "nadia", ProjectID: "audit", Start: first.AddDays(6), End: first.AddDays(12), HoursPerDay: decimal.NewFromInt(2), Status: planner.StatusActive},
	}
	for _, d := range drafts {
		if _, err := h.Store.CreateAllocation(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
