/*
Package export implements bulk spreadsheet export and import.

PURPOSE:
  The whole planning dataset round-trips through a single workbook:
  one sheet per entity plus a Settings sheet. Import is the inverse and
  feeds the store's bulk-load path. A CSV writer covers the common
  "just the allocations" case.

FORMAT:
  Dates are written as "YYYY-MM-DD" strings, hours as plain decimal
  strings; nothing in the workbook depends on spreadsheet date cells,
  so a round-trip never shifts a date.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// Snapshot is the full dataset carried by a workbook.
type Snapshot struct {
	TeamMembers []planner.Employee
	Projects    []planner.Project
	Allocations []planner.Allocation
	Holidays    []planner.Holiday
	Vacations   []planner.Vacation
	Settings    planner.Settings
	HasSettings bool
}

const (
	sheetTeam        = "TeamMembers"
	sheetProjects    = "Projects"
	sheetAllocations = "Allocations"
	sheetHolidays    = "Holidays"
	sheetVacations   = "Vacations"
	sheetSettings    = "Settings"
)

// =============================================================================
// XLSX EXPORT
// =============================================================================

// WriteXLSX writes the snapshot as a workbook.
func WriteXLSX(w io.Writer, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, sheetTeam, [][]string{{"id", "name", "role", "country"}}, teamRows(snap.TeamMembers)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetProjects, [][]string{{"id", "name", "color", "startDate", "endDate"}}, projectRows(snap.Projects)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetAllocations, [][]string{{"id", "employeeId", "projectId", "startDate", "endDate", "hoursPerDay", "status"}}, allocationRows(snap.Allocations)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetHolidays, [][]string{{"id", "name", "date", "country"}}, holidayRows(snap.Holidays)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetVacations, [][]string{{"id", "employeeId", "startDate", "endDate", "type"}}, vacationRows(snap.Vacations)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetSettings, [][]string{{"key", "value"}}, settingsRows(snap)); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to finalize workbook: %w", err)
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, header [][]string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	all := append(header, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

func teamRows(members []planner.Employee) [][]string {
	var rows [][]string
	for _, e := range members {
		rows = append(rows, []string{e.ID, e.Name, e.Role, string(e.Country)})
	}
	return rows
}

func projectRows(projects []planner.Project) [][]string {
	var rows [][]string
	for _, p := range projects {
		start, end := "", ""
		if p.StartDate != nil {
			start = p.StartDate.String()
		}
		if p.EndDate != nil {
			end = p.EndDate.String()
		}
		rows = append(rows, []string{p.ID, p.Name, p.Color, start, end})
	}
	return rows
}

func allocationRows(allocations []planner.Allocation) [][]string {
	var rows [][]string
	for _, a := range allocations {
		rows = append(rows, []string{
			a.ID, a.EmployeeID, a.ProjectID,
			a.Start.String(), a.End.String(),
			a.HoursPerDay.String(), string(a.Status),
		})
	}
	return rows
}

func holidayRows(holidays []planner.Holiday) [][]string {
	var rows [][]string
	for _, h := range holidays {
		rows = append(rows, []string{h.ID, h.Name, h.Date.String(), string(h.Country)})
	}
	return rows
}

func vacationRows(vacations []planner.Vacation) [][]string {
	var rows [][]string
	for _, v := range vacations {
		rows = append(rows, []string{v.ID, v.EmployeeID, v.Start.String(), v.End.String(), string(v.Type)})
	}
	return rows
}

func settingsRows(snap Snapshot) [][]string {
	if !snap.HasSettings {
		return nil
	}
	var rows [][]string
	if snap.Settings.BufferPct != nil {
		rows = append(rows, []string{"bufferPercentage", snap.Settings.BufferPct.String()})
	}
	for country, hours := range snap.Settings.WeeklyHours {
		rows = append(rows, []string{"weeklyHours:" + string(country), hours.String()})
	}
	return rows
}

// =============================================================================
// XLSX IMPORT
// =============================================================================

// ReadXLSX parses a workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) (Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var snap Snapshot

	for _, row := range sheetRows(f, sheetTeam) {
		if len(row) < 4 {
			continue
		}
		snap.TeamMembers = append(snap.TeamMembers, planner.Employee{
			ID: row[0], Name: row[1], Role: row[2], Country: planner.Country(row[3]),
		})
	}

	for _, row := range sheetRows(f, sheetProjects) {
		if len(row) < 3 {
			continue
		}
		p := planner.Project{ID: row[0], Name: row[1], Color: row[2]}
		if len(row) > 3 && row[3] != "" {
			d, err := calendar.ParseDay(row[3])
			if err != nil {
				return Snapshot{}, err
			}
			p.StartDate = &d
		}
		if len(row) > 4 && row[4] != "" {
			d, err := calendar.ParseDay(row[4])
			if err != nil {
				return Snapshot{}, err
			}
			p.EndDate = &d
		}
		snap.Projects = append(snap.Projects, p)
	}

	for _, row := range sheetRows(f, sheetAllocations) {
		if len(row) < 7 {
			continue
		}
		start, err := calendar.ParseDay(row[3])
		if err != nil {
			return Snapshot{}, err
		}
		end, err := calendar.ParseDay(row[4])
		if err != nil {
			return Snapshot{}, err
		}
		hours, err := decimal.NewFromString(row[5])
		if err != nil {
			return Snapshot{}, fmt.Errorf("bad hoursPerDay %q: %w", row[5], err)
		}
		snap.Allocations = append(snap.Allocations, planner.Allocation{
			ID: row[0], EmployeeID: row[1], ProjectID: row[2],
			Start: start, End: end, HoursPerDay: hours,
			Status: planner.AllocationStatus(row[6]),
		})
	}

	for _, row := range sheetRows(f, sheetHolidays) {
		if len(row) < 4 {
			continue
		}
		d, err := calendar.ParseDay(row[2])
		if err != nil {
			return Snapshot{}, err
		}
		snap.Holidays = append(snap.Holidays, planner.Holiday{
			ID: row[0], Name: row[1], Date: d, Country: planner.Country(row[3]),
		})
	}

	for _, row := range sheetRows(f, sheetVacations) {
		if len(row) < 5 {
			continue
		}
		start, err := calendar.ParseDay(row[2])
		if err != nil {
			return Snapshot{}, err
		}
		end, err := calendar.ParseDay(row[3])
		if err != nil {
			return Snapshot{}, err
		}
		snap.Vacations = append(snap.Vacations, planner.Vacation{
			ID: row[0], EmployeeID: row[1], Start: start, End: end,
			Type: planner.VacationType(row[4]),
		})
	}

	settings := planner.Settings{WeeklyHours: make(map[planner.Country]decimal.Decimal)}
	for _, row := range sheetRows(f, sheetSettings) {
		if len(row) < 2 {
			continue
		}
		value, err := decimal.NewFromString(row[1])
		if err != nil {
			return Snapshot{}, fmt.Errorf("bad settings value %q: %w", row[1], err)
		}
		switch {
		case row[0] == "bufferPercentage":
			buffer := value
			settings.BufferPct = &buffer
			snap.HasSettings = true
		case len(row[0]) > len("weeklyHours:") && row[0][:len("weeklyHours:")] == "weeklyHours:":
			settings.WeeklyHours[planner.Country(row[0][len("weeklyHours:"):])] = value
			snap.HasSettings = true
		}
	}
	if snap.HasSettings {
		snap.Settings = settings
	}
	return snap, nil
}

// sheetRows returns the data rows of a sheet, skipping the header.
func sheetRows(f *excelize.File, name string) [][]string {
	rows, err := f.GetRows(name)
	if err != nil || len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

// =============================================================================
// CSV (allocations only)
// =============================================================================

// WriteAllocationsCSV writes the allocation list as CSV.
func WriteAllocationsCSV(w io.Writer, allocations []planner.Allocation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "employeeId", "projectId", "startDate", "endDate", "hoursPerDay", "status"}); err != nil {
		return err
	}
	for _, a := range allocations {
		record := []string{
			a.ID, a.EmployeeID, a.ProjectID,
			a.Start.String(), a.End.String(),
			a.HoursPerDay.String(), string(a.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAllocationsCSV parses a CSV written by WriteAllocationsCSV.
func ReadAllocationsCSV(r io.Reader) ([]planner.Allocation, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	var out []planner.Allocation
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 7 {
			return nil, fmt.Errorf("row %d: expected 7 columns, got %d", i+1, len(rec))
		}
		start, err := calendar.ParseDay(rec[3])
		if err != nil {
			return nil, err
		}
		end, err := calendar.ParseDay(rec[4])
		if err != nil {
			return nil, err
		}
		hours, err := decimal.NewFromString(rec[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad hoursPerDay %q: %w", i+1, rec[5], err)
		}
		if _, err := strconv.ParseInt(rec[0], 10, 64); err != nil && rec[0] != "" {
			return nil, fmt.Errorf("row %d: bad id %q", i+1, rec[0])
		}
		out = append(out, planner.Allocation{
			ID: rec[0], EmployeeID: rec[1], ProjectID: rec[2],
			Start: start, End: end, HoursPerDay: hours,
			Status: planner.AllocationStatus(rec[6]),
		})
	}
	return out, nil
}
