/*
errors.go - Sentinel errors for the planner domain

PURPOSE:
  Shared error values used across the planner, gesture, store, and api
  packages. Packages wrap these with additional context and callers
  classify with errors.Is.

SEE ALSO:
  - gesture/errors.go: gesture-specific conflict errors wrapping these
*/
package planner

import "errors"

var (
	// ErrInvalidDateRange is returned when an end date precedes a start date.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrNegativeHours is returned when hours per day is negative.
	// Zero is legal (weekend/holiday allocations carry zero hours).
	ErrNegativeHours = errors.New("hours per day cannot be negative")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotConfigured indicates incomplete settings (missing buffer or
	// weekly hours). Engine functions report this via their ok result;
	// the API boundary maps it to an explicit "not configured" value.
	ErrNotConfigured = errors.New("settings not configured")
)

// IsValidation reports whether the error is due to invalid input that the
// caller should surface to the user before any request is sent.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) || errors.Is(err, ErrNegativeHours)
}
