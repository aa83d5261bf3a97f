/*
errors.go - Conflict and transport errors for calendar gestures

PURPOSE:
  Every way a gesture can be rejected, in one place. Conflicts are
  detected locally against the in-memory allocation list before any
  request is sent; transport errors wrap store failures after which
  local state is guaranteed unchanged.

USAGE:
  if errors.Is(err, gesture.ErrRangeOverlap) { ... }
  var te *gesture.TransportError
  if errors.As(err, &te) { ... retryable notification ... }

SEE ALSO:
  - planner/errors.go: validation sentinels these sit alongside
*/
package gesture

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrGestureActive is returned when a gesture is started while another
	// one is in progress. Only one gesture may be active at a time.
	ErrGestureActive = errors.New("another gesture is in progress")

	// ErrNoGesture is returned when a move/release event arrives with no
	// matching gesture in progress.
	ErrNoGesture = errors.New("no gesture in progress")

	// ErrAllocationBusy is returned when a gesture targets an allocation
	// whose previous commit is still in flight.
	ErrAllocationBusy = errors.New("allocation has a commit in flight")

	// ErrDuplicateProject is returned when the dropped project already has
	// an allocation for the same employee covering the target date.
	ErrDuplicateProject = errors.New("project already allocated on this date")

	// ErrCrossEmployeeMove is returned when an allocation is dropped on a
	// different employee row. Reassignment is delete + recreate only.
	ErrCrossEmployeeMove = errors.New("allocation can only move within its employee row")

	// ErrRangeOverlap is returned when a committed range would overlap
	// another allocation of the same employee and project.
	ErrRangeOverlap = errors.New("date range overlaps an existing allocation for this project")
)

// IsConflict reports whether the error is a local conflict rejection:
// the gesture was aborted and no mutation was sent.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateProject) ||
		errors.Is(err, ErrCrossEmployeeMove) ||
		errors.Is(err, ErrRangeOverlap)
}

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DuplicateProjectError reports which existing allocation blocked a drop.
type DuplicateProjectError struct {
	EmployeeID string
	ProjectID  string
	Day        calendar.Day
	ExistingID string
}

func (e *DuplicateProjectError) Error() string {
	return fmt.Sprintf("project %s already allocated to %s on %s (allocation %s)",
		e.ProjectID, e.EmployeeID, e.Day, e.ExistingID)
}

func (e *DuplicateProjectError) Unwrap() error { return ErrDuplicateProject }

// RangeOverlapError reports which allocation a new range collided with.
type RangeOverlapError struct {
	AllocationID string
	WithID       string
	Range        calendar.DateRange
}

func (e *RangeOverlapError) Error() string {
	return fmt.Sprintf("range %s overlaps allocation %s", e.Range, e.WithID)
}

func (e *RangeOverlapError) Unwrap() error { return ErrRangeOverlap }

// TransportError wraps a store failure. By the time it is returned the
// local allocation list has been restored to its pre-gesture state, so
// the caller only needs to show a retryable notification.
type TransportError struct {
	Op  string // "create", "update", "delete"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether the error came from the mutation boundary.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// validateManualEdit checks dialog input before any request is sent.
func validateManualEdit(start, end calendar.Day, hours decimal.Decimal) error {
	if end.Before(start) {
		return planner.ErrInvalidDateRange
	}
	if hours.IsNegative() {
		return planner.ErrNegativeHours
	}
	return nil
}
