package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/export"
	"github.com/warp/capacity-planner/planner"
)

func day(s string) calendar.Day { return calendar.MustParseDay(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fullSnapshot() export.Snapshot {
	buffer := dec("10")
	projectStart := day("2026-06-01")
	return export.Snapshot{
		TeamMembers: []planner.Employee{
			{ID: "alice", Name: "Alice Tremblay", Role: "Designer", Country: planner.CountryCanada},
			{ID: "bruno", Name: "Bruno Costa", Role: "Developer", Country: planner.CountryBrazil},
		},
		Projects: []planner.Project{
			{ID: "website", Name: "Website Redesign", Color: "#4f8ef7", StartDate: &projectStart},
			{ID: "mobile", Name: "Mobile App", Color: "#f78e4f"},
		},
		Allocations: []planner.Allocation{
			{ID: "1", EmployeeID: "alice", ProjectID: "website",
				Start: day("2026-06-02"), End: day("2026-06-12"),
				HoursPerDay: dec("7.5"), Status: planner.StatusActive},
			{ID: "2", EmployeeID: "bruno", ProjectID: "mobile",
				Start: day("2026-06-06"), End: day("2026-06-06"),
				HoursPerDay: dec("0"), Status: planner.StatusCompleted},
		},
		Holidays: []planner.Holiday{
			{ID: "h1", Name: "Company Day", Date: day("2026-06-24"), Country: planner.CountryBoth},
		},
		Vacations: []planner.Vacation{
			{ID: "v1", EmployeeID: "bruno", Start: day("2026-07-06"), End: day("2026-07-10"),
				Type: planner.VacationRegular},
		},
		Settings: planner.Settings{
			BufferPct: &buffer,
			WeeklyHours: map[planner.Country]decimal.Decimal{
				planner.CountryCanada: dec("37.5"),
				planner.CountryBrazil: dec("44"),
			},
		},
		HasSettings: true,
	}
}

// =============================================================================
// XLSX ROUND TRIP
// =============================================================================

func TestXLSX_RoundTripPreservesDataset(t *testing.T) {
	// GIVEN: A snapshot covering every entity
	// WHEN: Writing a workbook and reading it back
	// THEN: Every record and every date survives unchanged

	in := fullSnapshot()
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, in))

	out, err := export.ReadXLSX(&buf)
	require.NoError(t, err)

	require.Len(t, out.TeamMembers, 2)
	assert.Equal(t, "Alice Tremblay", out.TeamMembers[0].Name)
	assert.Equal(t, planner.CountryBrazil, out.TeamMembers[1].Country)

	require.Len(t, out.Projects, 2)
	require.NotNil(t, out.Projects[0].StartDate)
	assert.Equal(t, "2026-06-01", out.Projects[0].StartDate.String())
	assert.Nil(t, out.Projects[1].StartDate)

	require.Len(t, out.Allocations, 2)
	got := out.Allocations[0]
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "2026-06-02", got.Start.String(), "dates never shift in a round trip")
	assert.Equal(t, "2026-06-12", got.End.String())
	assert.True(t, got.HoursPerDay.Equal(dec("7.5")))
	assert.True(t, out.Allocations[1].HoursPerDay.IsZero(), "zero-hour allocations survive")
	assert.Equal(t, planner.StatusCompleted, out.Allocations[1].Status)

	require.Len(t, out.Holidays, 1)
	assert.Equal(t, planner.CountryBoth, out.Holidays[0].Country)

	require.Len(t, out.Vacations, 1)
	assert.Equal(t, planner.VacationRegular, out.Vacations[0].Type)

	require.True(t, out.HasSettings)
	require.NotNil(t, out.Settings.BufferPct)
	assert.True(t, out.Settings.BufferPct.Equal(dec("10")))
	assert.True(t, out.Settings.WeeklyHours[planner.CountryCanada].Equal(dec("37.5")))
	assert.True(t, out.Settings.WeeklyHours[planner.CountryBrazil].Equal(dec("44")))
}

func TestXLSX_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, export.Snapshot{}))

	out, err := export.ReadXLSX(&buf)
	require.NoError(t, err)

	assert.Empty(t, out.TeamMembers)
	assert.Empty(t, out.Allocations)
	assert.False(t, out.HasSettings, "no settings sheet rows means not configured")
}

func TestReadXLSX_RejectsGarbage(t *testing.T) {
	_, err := export.ReadXLSX(strings.NewReader("this is not a workbook"))
	assert.Error(t, err)
}

// =============================================================================
// CSV
// =============================================================================

func TestAllocationsCSV_RoundTrip(t *testing.T) {
	in := fullSnapshot().Allocations

	var buf bytes.Buffer
	require.NoError(t, export.WriteAllocationsCSV(&buf, in))

	out, err := export.ReadAllocationsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, "2026-06-02", out[0].Start.String())
	assert.True(t, out[0].HoursPerDay.Equal(dec("7.5")))
	assert.Equal(t, planner.StatusActive, out[0].Status)
}

func TestReadAllocationsCSV_RejectsBadRows(t *testing.T) {
	t.Run("short row", func(t *testing.T) {
		csv := "id,employeeId,projectId,startDate,endDate,hoursPerDay,status\n1,alice,website\n"
		_, err := export.ReadAllocationsCSV(strings.NewReader(csv))
		assert.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		csv := "id,employeeId,projectId,startDate,endDate,hoursPerDay,status\n" +
			"1,alice,website,junk,2026-06-12,7.5,active\n"
		_, err := export.ReadAllocationsCSV(strings.NewReader(csv))
		assert.Error(t, err)
	})

	t.Run("bad hours", func(t *testing.T) {
		csv := "id,employeeId,projectId,startDate,endDate,hoursPerDay,status\n" +
			"1,alice,website,2026-06-02,2026-06-12,lots,active\n"
		_, err := export.ReadAllocationsCSV(strings.NewReader(csv))
		assert.Error(t, err)
	})
}
