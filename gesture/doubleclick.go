/*
doubleclick.go - Double-click detection for allocation blocks

PURPOSE:
  A double-click on an allocation opens the structured edit dialog and
  must suppress the drag gesture that would otherwise start from the
  same pointer-down. Detection is an explicit state object with an
  injectable clock: two presses on the same allocation within the
  window make a double-click.
*/
package gesture

import "time"

// DoubleClickWindow is how close two presses must be to count as a
// double-click.
const DoubleClickWindow = 300 * time.Millisecond

type clickTracker struct {
	window time.Duration
	lastID string
	lastAt time.Time
}

// press records a pointer-down on an allocation and reports whether it
// completes a double-click. A completed double-click resets the tracker
// so a triple click starts a fresh sequence.
func (c *clickTracker) press(allocationID string, at time.Time) bool {
	if allocationID == c.lastID && !c.lastAt.IsZero() && at.Sub(c.lastAt) <= c.window {
		c.reset()
		return true
	}
	c.lastID = allocationID
	c.lastAt = at
	return false
}

// reset clears pending click state. Called on teardown and whenever a
// double-click fires.
func (c *clickTracker) reset() {
	c.lastID = ""
	c.lastAt = time.Time{}
}
