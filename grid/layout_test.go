package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/grid"
	"github.com/warp/capacity-planner/planner"
)

func weekDays(start string) []calendar.Day {
	first := day(start)
	days := make([]calendar.Day, 7)
	for i := range days {
		days[i] = first.AddDays(i)
	}
	return days
}

func testEmployees(ids ...string) []planner.Employee {
	out := make([]planner.Employee, len(ids))
	for i, id := range ids {
		out[i] = planner.Employee{ID: id, Name: id, Country: planner.CountryCanada}
	}
	return out
}

// =============================================================================
// ROW HEIGHT
// =============================================================================

func TestLayout_RowHeightGrowsWithStackDepth(t *testing.T) {
	// GIVEN: Default metrics (base 16, block 22, spacing 4, min 48)
	// THEN: overlap 0 and 1 clamp to the minimum; deeper stacks grow

	days := weekDays("2026-06-01")
	employees := testEmployees("empty", "single", "triple")
	allocations := []planner.Allocation{
		alloc("1", "single", "2026-06-01", "2026-06-07"),
		alloc("2", "triple", "2026-06-01", "2026-06-07"),
		alloc("3", "triple", "2026-06-02", "2026-06-04"),
		alloc("4", "triple", "2026-06-03", "2026-06-03"),
	}

	l := grid.NewLayout(grid.DefaultMetrics(), days, employees, allocations)

	assert.Equal(t, 48.0, l.RowHeight("empty"))
	// 16 + 1*(22+4) - 4 = 38, clamped to 48
	assert.Equal(t, 48.0, l.RowHeight("single"))
	// 16 + 3*(22+4) - 4 = 90
	assert.Equal(t, 90.0, l.RowHeight("triple"))
	assert.Equal(t, 186.0, l.TotalHeight())
}

func TestLayout_RowHeightForUnknownEmployee(t *testing.T) {
	l := grid.NewLayout(grid.DefaultMetrics(), weekDays("2026-06-01"), nil, nil)
	assert.Equal(t, 48.0, l.RowHeight("nobody"))
}

// =============================================================================
// HIT-TESTING
// =============================================================================

func TestCellAt_MapsCoordinatesToCells(t *testing.T) {
	// GIVEN: Two employees, the first with a 90px row (triple stack)
	days := weekDays("2026-06-01")
	employees := testEmployees("a", "b")
	allocations := []planner.Allocation{
		alloc("1", "a", "2026-06-01", "2026-06-07"),
		alloc("2", "a", "2026-06-01", "2026-06-07"),
		alloc("3", "a", "2026-06-01", "2026-06-07"),
	}
	l := grid.NewLayout(grid.DefaultMetrics(), days, employees, allocations)

	// First cell, top-left corner.
	emp, d, ok := l.CellAt(grid.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, "a", emp)
	assert.Equal(t, "2026-06-01", d.String())

	// Third column (cell width 36), still inside row "a" (height 90).
	emp, d, ok = l.CellAt(grid.Point{X: 80, Y: 89})
	require.True(t, ok)
	assert.Equal(t, "a", emp)
	assert.Equal(t, "2026-06-03", d.String())

	// Crossing the row boundary lands in row "b".
	emp, _, ok = l.CellAt(grid.Point{X: 80, Y: 90})
	require.True(t, ok)
	assert.Equal(t, "b", emp)
}

func TestCellAt_OutsideGrid(t *testing.T) {
	l := grid.NewLayout(grid.DefaultMetrics(), weekDays("2026-06-01"), testEmployees("a"), nil)

	_, _, ok := l.CellAt(grid.Point{X: -1, Y: 10})
	assert.False(t, ok, "negative X misses")

	_, _, ok = l.CellAt(grid.Point{X: 10, Y: -1})
	assert.False(t, ok, "negative Y misses")

	_, _, ok = l.CellAt(grid.Point{X: 7*36 + 1, Y: 10})
	assert.False(t, ok, "beyond last column misses")

	_, _, ok = l.CellAt(grid.Point{X: 10, Y: 48})
	assert.False(t, ok, "below last row misses")
}
