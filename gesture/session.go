/*
session.go - The calendar view's working state

PURPOSE:
  The allocation list held by the calendar view is the single source of
  truth for the session. Every gesture validates against it, every commit
  round-trips through the store before the list is updated, and after
  each mutation the affected employee's cached allocated hours are
  recomputed for the month in view.

  Employees, holidays, vacations, and settings are snapshots refreshed
  on their respective change signals; gestures never read ambient state.
*/
package gesture

import (
	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// Session is the in-memory state the gesture machine operates on.
type Session struct {
	Month       calendar.Month
	Employees   []planner.Employee
	Allocations []planner.Allocation
	Holidays    []planner.Holiday
	Vacations   []planner.Vacation
	Settings    planner.Settings
}

// Employee returns the employee record by id.
func (s *Session) Employee(id string) (planner.Employee, bool) {
	for _, e := range s.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return planner.Employee{}, false
}

// Allocation returns the allocation record by id.
func (s *Session) Allocation(id string) (planner.Allocation, bool) {
	for _, a := range s.Allocations {
		if a.ID == id {
			return a, true
		}
	}
	return planner.Allocation{}, false
}

// snapshotAllocations copies the allocation list so a failed multi-step
// commit can restore the pre-gesture state exactly.
func (s *Session) snapshotAllocations() []planner.Allocation {
	out := make([]planner.Allocation, len(s.Allocations))
	copy(out, s.Allocations)
	return out
}

func (s *Session) addAllocation(a planner.Allocation) {
	s.Allocations = append(s.Allocations, a)
}

func (s *Session) replaceAllocation(a planner.Allocation) {
	for i := range s.Allocations {
		if s.Allocations[i].ID == a.ID {
			s.Allocations[i] = a
			return
		}
	}
}

func (s *Session) removeAllocation(id string) {
	for i := range s.Allocations {
		if s.Allocations[i].ID == id {
			s.Allocations = append(s.Allocations[:i], s.Allocations[i+1:]...)
			return
		}
	}
}

// recomputeAllocated refreshes the employee's cached allocated hours for
// the month in view.
func (s *Session) recomputeAllocated(employeeID string) {
	for i := range s.Employees {
		if s.Employees[i].ID == employeeID {
			s.Employees[i].AllocatedHours = planner.AllocatedHours(
				s.Employees[i], s.Allocations, s.Month, s.Holidays)
			return
		}
	}
}
