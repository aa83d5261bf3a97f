/*
layout.go - Grid geometry and hit-testing

PURPOSE:
  Owns the pixel layout of the calendar grid: column positions for the
  visible days, per-employee row heights sized to the deepest allocation
  stack, and the inverse mapping from a pointer position to the
  (employee, day) cell under it.

ROW HEIGHT:
  base + maxOverlap * (blockHeight + spacing) - spacing, clamped to a
  minimum so employees without allocations still get a usable row.

HIT-TESTING:
  The gesture state machine never inspects rendered elements; it calls
  CellAt with raw pointer coordinates. Keeping the mapping here keeps
  the state machine free of rendering concerns.
*/
package grid

import (
	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// Point is a pointer position in grid-local pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Metrics holds the fixed pixel dimensions of the grid.
type Metrics struct {
	CellWidth     float64
	BaseRowHeight float64
	BlockHeight   float64
	BlockSpacing  float64
	MinRowHeight  float64
}

// DefaultMetrics matches the rendered grid.
func DefaultMetrics() Metrics {
	return Metrics{
		CellWidth:     36,
		BaseRowHeight: 16,
		BlockHeight:   22,
		BlockSpacing:  4,
		MinRowHeight:  48,
	}
}

// Row is one employee row with its computed height.
type Row struct {
	EmployeeID string
	Height     float64
}

// Layout is an immutable snapshot of the grid geometry for one view:
// rebuild it whenever the visible days, the employee list, or the
// allocation list changes.
type Layout struct {
	metrics Metrics
	days    []calendar.Day
	rows    []Row
}

// NewLayout computes the layout for the visible days and employee rows.
func NewLayout(metrics Metrics, days []calendar.Day, employees []planner.Employee, allocations []planner.Allocation) *Layout {
	rows := make([]Row, len(employees))
	for i, emp := range employees {
		rows[i] = Row{
			EmployeeID: emp.ID,
			Height:     rowHeight(metrics, MaxOverlap(allocations, emp.ID, days)),
		}
	}
	return &Layout{metrics: metrics, days: days, rows: rows}
}

func rowHeight(m Metrics, overlap int) float64 {
	if overlap == 0 {
		return m.MinRowHeight
	}
	h := m.BaseRowHeight + float64(overlap)*(m.BlockHeight+m.BlockSpacing) - m.BlockSpacing
	if h < m.MinRowHeight {
		return m.MinRowHeight
	}
	return h
}

// Days returns the visible day columns.
func (l *Layout) Days() []calendar.Day { return l.days }

// Rows returns the employee rows in display order.
func (l *Layout) Rows() []Row { return l.rows }

// RowHeight returns the computed height for an employee row,
// MinRowHeight when the employee is not in the layout.
func (l *Layout) RowHeight(employeeID string) float64 {
	for _, r := range l.rows {
		if r.EmployeeID == employeeID {
			return r.Height
		}
	}
	return l.metrics.MinRowHeight
}

// TotalHeight returns the summed height of all rows.
func (l *Layout) TotalHeight() float64 {
	total := 0.0
	for _, r := range l.rows {
		total += r.Height
	}
	return total
}

// CellAt maps a pointer position to the (employee, day) cell under it.
// ok is false outside the grid; gestures dropping there are aborted.
func (l *Layout) CellAt(p Point) (employeeID string, day calendar.Day, ok bool) {
	if p.X < 0 || p.Y < 0 {
		return "", calendar.Day{}, false
	}

	col := int(p.X / l.metrics.CellWidth)
	if col >= len(l.days) {
		return "", calendar.Day{}, false
	}

	y := p.Y
	for _, r := range l.rows {
		if y < r.Height {
			return r.EmployeeID, l.days[col], true
		}
		y -= r.Height
	}
	return "", calendar.Day{}, false
}
