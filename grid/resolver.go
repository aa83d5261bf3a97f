/*
Package grid resolves what the calendar grid shows in each cell and maps
pointer coordinates back to cells.

PURPOSE:
  The calendar renders one row per employee and one column per day.
  A cell may hold several stacked allocation blocks; rows grow to fit
  the deepest stack on any visible day. This package owns that
  resolution plus the coordinate -> (employee, day) hit-test the
  gesture state machine depends on.

STACKING ORDER:
  Allocations inside a cell always sort ascending by creation order
  (numeric id). Rendering relies on this for stable stacking; never
  return cell contents in any other order.

SEE ALSO:
  - layout.go: row heights and hit-testing
  - gesture:   consumes CellAt through an injected interface
*/
package grid

import (
	"sort"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// CELL RESOLUTION
// =============================================================================

// AllocationsForCell returns the allocations occupying the (employee, day)
// cell, sorted ascending by creation order.
func AllocationsForCell(allocations []planner.Allocation, employeeID string, day calendar.Day) []planner.Allocation {
	var cell []planner.Allocation
	for _, a := range allocations {
		if a.EmployeeID == employeeID && a.Covers(day) {
			cell = append(cell, a)
		}
	}
	sortByCreation(cell)
	return cell
}

// OverlappingForEmployee returns every allocation of the employee visible
// on any of the given days, de-duplicated and in creation order. The grid
// uses this to size the employee's row.
func OverlappingForEmployee(allocations []planner.Allocation, employeeID string, days []calendar.Day) []planner.Allocation {
	seen := make(map[string]bool)
	var out []planner.Allocation
	for _, day := range days {
		for _, a := range AllocationsForCell(allocations, employeeID, day) {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			out = append(out, a)
		}
	}
	sortByCreation(out)
	return out
}

// MaxOverlap returns the deepest simultaneous stack across the given days:
// the maximum number of allocations sharing any single cell.
func MaxOverlap(allocations []planner.Allocation, employeeID string, days []calendar.Day) int {
	max := 0
	for _, day := range days {
		if n := len(AllocationsForCell(allocations, employeeID, day)); n > max {
			max = n
		}
	}
	return max
}

// StartingOn returns the employee's allocations whose range starts exactly
// on the day. The cell showing a range's first day renders the left resize
// handle; no other cell does.
func StartingOn(allocations []planner.Allocation, employeeID string, day calendar.Day) []planner.Allocation {
	var out []planner.Allocation
	for _, a := range allocations {
		if a.EmployeeID == employeeID && a.Start.Equal(day) {
			out = append(out, a)
		}
	}
	sortByCreation(out)
	return out
}

// EndingOn returns the employee's allocations whose range ends exactly on
// the day (right resize handle).
func EndingOn(allocations []planner.Allocation, employeeID string, day calendar.Day) []planner.Allocation {
	var out []planner.Allocation
	for _, a := range allocations {
		if a.EmployeeID == employeeID && a.End.Equal(day) {
			out = append(out, a)
		}
	}
	sortByCreation(out)
	return out
}

func sortByCreation(allocs []planner.Allocation) {
	sort.SliceStable(allocs, func(i, j int) bool {
		return planner.CompareIDs(allocs[i].ID, allocs[j].ID) < 0
	})
}
