/*
machine.go - The calendar interaction state machine

PURPOSE:
  Maps pointer gestures on the calendar grid to allocation mutations.
  Exactly one gesture may be in progress at a time:

    Idle -> Creating   (project chip picked up from the tray)
    Idle -> Moving     (pointer-down on an allocation block)
    Idle -> Resizing   (pointer-down on a range edge handle)
    Creating -> ConfirmingOverallocation (candidate exceeds daily cap)

  Every path either commits through the store and returns to Idle, or
  aborts to Idle with the allocation list untouched. There is no state
  from which a partial mutation can leak.

COMMIT PROTOCOL:
  1. Validate locally against the session's allocation list
  2. Issue the mutation to the store (the only writer)
  3. On success: update the local list, recompute the employee's cached
     allocated hours, publish allocation-changed
  4. On store failure: restore the pre-gesture list, surface a
     TransportError

CONFLICT RULES:
  - A project may not be dropped on a date it already covers for the
    same employee (duplicate).
  - Moves are horizontal only: the target row must be the source row.
  - A moved range may not overlap another allocation of the same
    (employee, project) pair, excluding the allocation being moved.
  - Overallocation is not an error: it is a confirmation gate with
    per-allocation editable hours.

SEE ALSO:
  - session.go:     the state being mutated
  - doubleclick.go: edit-dialog detection that suppresses drags
  - grid/layout.go: the injected hit-tester
*/
package gesture

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/grid"
	"github.com/warp/capacity-planner/planner"
	"github.com/warp/capacity-planner/signal"
)

// DefaultDragThreshold is the minimum pointer travel, in pixels, for a
// press-drag-release on an allocation to count as a move rather than a
// click.
const DefaultDragThreshold = 5.0

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store is the mutation boundary to the authoritative allocation store.
// Implemented by store/sqlite and store/memory.
type Store interface {
	CreateAllocation(ctx context.Context, draft planner.AllocationDraft) (planner.Allocation, error)
	UpdateAllocation(ctx context.Context, id string, patch planner.AllocationPatch) (planner.Allocation, error)
	DeleteAllocation(ctx context.Context, id string) error
}

// HitTester resolves pointer coordinates to calendar cells. Implemented
// by *grid.Layout; injected so the machine stays free of rendering
// concerns.
type HitTester interface {
	CellAt(p grid.Point) (employeeID string, day calendar.Day, ok bool)
}

// Config tunes the machine; zero values select defaults.
type Config struct {
	Now               func() time.Time
	DragThreshold     float64
	DoubleClickWindow time.Duration
}

// =============================================================================
// MODES
// =============================================================================

type Mode int

const (
	Idle Mode = iota
	Creating
	Moving
	Resizing
	ConfirmingOverallocation
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Creating:
		return "creating"
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	case ConfirmingOverallocation:
		return "confirming-overallocation"
	}
	return "unknown"
}

// Edge identifies which end of a range a resize drags.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

// =============================================================================
// MACHINE
// =============================================================================

type Machine struct {
	session *Session
	store   Store
	hits    HitTester
	bus     *signal.Bus

	now       func() time.Time
	threshold float64
	clicks    clickTracker

	mode       Mode
	creating   *createState
	moving     *moveState
	resizing   *resizeState
	confirming *confirmState

	// inflight tracks allocations with a commit on the wire; no new
	// gesture may start on them until the commit resolves.
	inflight map[string]bool
}

type createState struct {
	projectID string
}

type moveState struct {
	allocationID string
	original     calendar.DateRange
	last         grid.Point
	travel       float64
}

type resizeState struct {
	allocationID string
	edge         Edge
	preview      calendar.DateRange
}

type confirmState struct {
	draft     planner.AllocationDraft
	conflicts []planner.Allocation
}

// NewMachine wires the state machine to its session and collaborators.
func NewMachine(session *Session, store Store, hits HitTester, bus *signal.Bus, cfg Config) *Machine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DragThreshold == 0 {
		cfg.DragThreshold = DefaultDragThreshold
	}
	if cfg.DoubleClickWindow == 0 {
		cfg.DoubleClickWindow = DoubleClickWindow
	}
	return &Machine{
		session:   session,
		store:     store,
		hits:      hits,
		bus:       bus,
		now:       cfg.Now,
		threshold: cfg.DragThreshold,
		clicks:    clickTracker{window: cfg.DoubleClickWindow},
		inflight:  make(map[string]bool),
	}
}

// Mode returns the current gesture mode.
func (m *Machine) Mode() Mode { return m.mode }

// Busy reports whether the allocation has a commit in flight.
func (m *Machine) Busy(allocationID string) bool { return m.inflight[allocationID] }

// Cancel aborts any gesture in progress and returns to Idle without
// touching the allocation list. Always safe to call.
func (m *Machine) Cancel() {
	m.mode = Idle
	m.creating = nil
	m.moving = nil
	m.resizing = nil
	m.confirming = nil
}

// Close tears the machine down, clearing pending double-click state.
func (m *Machine) Close() {
	m.Cancel()
	m.clicks.reset()
}

// =============================================================================
// CREATE: project chip drag -> drop on a cell
// =============================================================================

// CreateOutcome is the result of dropping a project chip. Exactly one of
// the fields is set on success; both are nil when the drop landed outside
// the grid and the gesture was aborted.
type CreateOutcome struct {
	Created      *planner.Allocation
	Confirmation *OverallocationPrompt
}

// OverallocationPrompt asks the user to confirm an overallocated day,
// with per-allocation editable hours. The candidate entry has an empty
// AllocationID.
type OverallocationPrompt struct {
	EmployeeID string
	Day        calendar.Day
	Capacity   decimal.Decimal
	Entries    []PromptEntry
}

type PromptEntry struct {
	AllocationID string // "" for the allocation being created
	ProjectID    string
	Hours        decimal.Decimal
}

// StartCreate begins a create gesture for the picked-up project chip.
func (m *Machine) StartCreate(projectID string) error {
	if m.mode != Idle {
		return ErrGestureActive
	}
	m.mode = Creating
	m.creating = &createState{projectID: projectID}
	return nil
}

// DropCreate resolves the drop position and either commits the new
// allocation, opens the overallocation confirmation, rejects a duplicate,
// or aborts when the drop misses the grid.
func (m *Machine) DropCreate(ctx context.Context, p grid.Point) (CreateOutcome, error) {
	if m.mode != Creating {
		return CreateOutcome{}, ErrNoGesture
	}
	projectID := m.creating.projectID

	employeeID, day, ok := m.hits.CellAt(p)
	if !ok {
		m.Cancel()
		return CreateOutcome{}, nil
	}
	emp, ok := m.session.Employee(employeeID)
	if !ok {
		m.Cancel()
		return CreateOutcome{}, planner.ErrNotFound
	}

	// Same project, same employee, already covering this date: duplicate.
	for _, a := range m.session.Allocations {
		if a.EmployeeID == employeeID && a.ProjectID == projectID && a.Covers(day) {
			m.Cancel()
			return CreateOutcome{}, &DuplicateProjectError{
				EmployeeID: employeeID, ProjectID: projectID, Day: day, ExistingID: a.ID,
			}
		}
	}

	hours := m.dropHours(emp, day)
	draft := planner.AllocationDraft{
		EmployeeID:  employeeID,
		ProjectID:   projectID,
		Start:       day,
		End:         day,
		HoursPerDay: hours,
		Status:      planner.StatusActive,
	}

	// Zero-hour drops (weekend/holiday) can never exceed a positive cap,
	// so they bypass the overallocation gate entirely.
	if hours.IsPositive() {
		if limit, conflicts, over := m.overallocated(emp, day, hours); over {
			m.mode = ConfirmingOverallocation
			m.creating = nil
			m.confirming = &confirmState{draft: draft, conflicts: conflicts}
			prompt := &OverallocationPrompt{EmployeeID: employeeID, Day: day, Capacity: limit}
			for _, c := range conflicts {
				prompt.Entries = append(prompt.Entries, PromptEntry{
					AllocationID: c.ID, ProjectID: c.ProjectID, Hours: c.HoursPerDay,
				})
			}
			prompt.Entries = append(prompt.Entries, PromptEntry{ProjectID: projectID, Hours: hours})
			return CreateOutcome{Confirmation: prompt}, nil
		}
	}

	created, err := m.commitCreate(ctx, draft)
	if err != nil {
		return CreateOutcome{}, err
	}
	return CreateOutcome{Created: created}, nil
}

// ConfirmOverallocation commits an overallocated create after the user
// adjusted hours. adjusted maps allocation id (or "" for the new entry)
// to the confirmed hours per day; omitted entries keep their hours.
//
// On a mid-sequence transport failure the session rolls back to the
// pre-confirmation snapshot, but per-conflict updates that already
// landed in the store stay applied there. The store and session then
// diverge until the next allocation-changed refresh; the alternative,
// compensating re-updates over the same failing transport, would be
// just as likely to fail.
func (m *Machine) ConfirmOverallocation(ctx context.Context, adjusted map[string]decimal.Decimal) (*planner.Allocation, error) {
	if m.mode != ConfirmingOverallocation {
		return nil, ErrNoGesture
	}
	state := m.confirming
	for _, hours := range adjusted {
		if hours.IsNegative() {
			return nil, planner.ErrNegativeHours
		}
	}

	rollback := m.session.snapshotAllocations()
	touched := map[string]bool{state.draft.EmployeeID: true}

	for _, c := range state.conflicts {
		hours, ok := adjusted[c.ID]
		if !ok || hours.Equal(c.HoursPerDay) {
			continue
		}
		h := hours
		updated, err := m.storeUpdate(ctx, c.ID, planner.AllocationPatch{HoursPerDay: &h})
		if err != nil {
			m.session.Allocations = rollback
			m.abortWithRecompute(touched)
			return nil, err
		}
		m.session.replaceAllocation(updated)
	}

	draft := state.draft
	if hours, ok := adjusted[""]; ok {
		draft.HoursPerDay = hours
	}
	created, err := m.storeCreate(ctx, draft)
	if err != nil {
		m.session.Allocations = rollback
		m.abortWithRecompute(touched)
		return nil, err
	}
	m.session.addAllocation(created)
	m.finishCommit(draft.EmployeeID)
	return &created, nil
}

// dropHours computes hours/day for a drop: the country's daily norm, or
// zero when the target date is a weekend or an applicable holiday (or
// weekly hours are not configured).
func (m *Machine) dropHours(emp planner.Employee, day calendar.Day) decimal.Decimal {
	if calendar.IsWeekendDay(day) {
		return decimal.Zero
	}
	for _, h := range m.session.Holidays {
		if h.AppliesTo(emp.Country) && h.Date.Equal(day) {
			return decimal.Zero
		}
	}
	daily, ok := m.session.Settings.DailyHoursFor(emp.Country)
	if !ok {
		return decimal.Zero
	}
	return daily
}

// overallocated checks whether the candidate pushes the cell past the
// daily cap, returning the cap and the allocations already in the cell.
func (m *Machine) overallocated(emp planner.Employee, day calendar.Day, candidate decimal.Decimal) (decimal.Decimal, []planner.Allocation, bool) {
	limit, ok := m.session.Settings.DailyHoursFor(emp.Country)
	if !ok {
		return decimal.Zero, nil, false
	}
	cell := grid.AllocationsForCell(m.session.Allocations, emp.ID, day)
	sum := candidate
	for _, a := range cell {
		sum = sum.Add(a.HoursPerDay)
	}
	if sum.GreaterThan(limit) {
		return limit, cell, true
	}
	return limit, nil, false
}

// =============================================================================
// MOVE: pointer-down on a block -> drag -> release
// =============================================================================

// PressResult says what a pointer-down on an allocation started.
type PressResult int

const (
	// PressMoving means a tentative move gesture began. It only becomes a
	// move if pointer travel exceeds the drag threshold before release.
	PressMoving PressResult = iota

	// PressEdit means the press completed a double-click: the edit dialog
	// should open and no drag gesture starts from this pointer-down.
	PressEdit
)

// PressAllocation handles pointer-down on an allocation block (not on a
// resize handle or the delete affordance).
func (m *Machine) PressAllocation(allocationID string, p grid.Point) (PressResult, error) {
	if m.mode != Idle {
		return 0, ErrGestureActive
	}
	if m.inflight[allocationID] {
		return 0, ErrAllocationBusy
	}
	alloc, ok := m.session.Allocation(allocationID)
	if !ok {
		return 0, planner.ErrNotFound
	}

	if m.clicks.press(allocationID, m.now()) {
		// Second click of a double-click: open the edit dialog, suppress
		// the drag that would otherwise start here.
		return PressEdit, nil
	}

	m.mode = Moving
	m.moving = &moveState{
		allocationID: allocationID,
		original:     alloc.Range(),
		last:         p,
	}
	return PressMoving, nil
}

// DragTo accumulates pointer travel during a move gesture.
func (m *Machine) DragTo(p grid.Point) {
	if m.mode != Moving {
		return
	}
	m.moving.travel += distance(m.moving.last, p)
	m.moving.last = p
}

// MoveOutcome is the result of releasing a move gesture.
type MoveOutcome struct {
	// Click is true when travel stayed under the drag threshold: the
	// press was a click, nothing was mutated, and no error is reported.
	Click bool
	Moved *planner.Allocation
}

// ReleaseMove resolves the drop cell and commits the move, or reports a
// click, or rejects cross-row and overlapping drops.
func (m *Machine) ReleaseMove(ctx context.Context, p grid.Point) (MoveOutcome, error) {
	if m.mode != Moving {
		return MoveOutcome{}, ErrNoGesture
	}
	state := m.moving
	state.travel += distance(state.last, p)

	if state.travel < m.threshold {
		m.Cancel()
		return MoveOutcome{Click: true}, nil
	}

	alloc, ok := m.session.Allocation(state.allocationID)
	if !ok {
		m.Cancel()
		return MoveOutcome{}, planner.ErrNotFound
	}

	employeeID, day, ok := m.hits.CellAt(p)
	if !ok {
		// Dropped outside the grid: abort, no mutation.
		m.Cancel()
		return MoveOutcome{}, nil
	}
	if employeeID != alloc.EmployeeID {
		m.Cancel()
		return MoveOutcome{}, ErrCrossEmployeeMove
	}

	next := calendar.DateRange{Start: day, End: day.AddDays(state.original.NumDays() - 1)}
	if err := m.checkOverlap(alloc, next); err != nil {
		m.Cancel()
		return MoveOutcome{}, err
	}

	start, end := next.Start, next.End
	moved, err := m.commitUpdate(ctx, alloc, planner.AllocationPatch{Start: &start, End: &end})
	if err != nil {
		return MoveOutcome{}, err
	}
	return MoveOutcome{Moved: moved}, nil
}

// DropOnRemoveZone deletes the allocation being dragged when it is
// released over the remove zone.
func (m *Machine) DropOnRemoveZone(ctx context.Context) error {
	if m.mode != Moving {
		return ErrNoGesture
	}
	id := m.moving.allocationID
	alloc, ok := m.session.Allocation(id)
	if !ok {
		m.Cancel()
		return planner.ErrNotFound
	}
	return m.commitDelete(ctx, alloc)
}

// checkOverlap enforces the single invariant on allocation ranges: one
// (employee, project) pair never holds two overlapping allocations. The
// allocation being moved is excluded from the check.
func (m *Machine) checkOverlap(moving planner.Allocation, next calendar.DateRange) error {
	for _, other := range m.session.Allocations {
		if other.ID == moving.ID ||
			other.EmployeeID != moving.EmployeeID ||
			other.ProjectID != moving.ProjectID {
			continue
		}
		if next.Overlaps(other.Range()) {
			return &RangeOverlapError{AllocationID: moving.ID, WithID: other.ID, Range: next}
		}
	}
	return nil
}

// =============================================================================
// RESIZE: edge handle drag
// =============================================================================

// StartResize begins dragging one edge of an allocation's range.
func (m *Machine) StartResize(allocationID string, edge Edge) error {
	if m.mode != Idle {
		return ErrGestureActive
	}
	if m.inflight[allocationID] {
		return ErrAllocationBusy
	}
	alloc, ok := m.session.Allocation(allocationID)
	if !ok {
		return planner.ErrNotFound
	}
	m.mode = Resizing
	m.resizing = &resizeState{allocationID: allocationID, edge: edge, preview: alloc.Range()}
	return nil
}

// ResizeTo updates the live preview from the pointer position. The dragged
// edge may reach any date on the correct side of the fixed edge; past it,
// the preview clamps to the fixed edge. Returns the current preview.
func (m *Machine) ResizeTo(p grid.Point) (calendar.DateRange, bool) {
	if m.mode != Resizing {
		return calendar.DateRange{}, false
	}
	_, day, ok := m.hits.CellAt(p)
	if !ok {
		return m.resizing.preview, true
	}
	switch m.resizing.edge {
	case EdgeLeft:
		if day.After(m.resizing.preview.End) {
			day = m.resizing.preview.End
		}
		m.resizing.preview.Start = day
	case EdgeRight:
		if day.Before(m.resizing.preview.Start) {
			day = m.resizing.preview.Start
		}
		m.resizing.preview.End = day
	}
	return m.resizing.preview, true
}

// ReleaseResize commits the previewed range.
func (m *Machine) ReleaseResize(ctx context.Context) (*planner.Allocation, error) {
	if m.mode != Resizing {
		return nil, ErrNoGesture
	}
	state := m.resizing
	alloc, ok := m.session.Allocation(state.allocationID)
	if !ok {
		m.Cancel()
		return nil, planner.ErrNotFound
	}
	start, end := state.preview.Start, state.preview.End
	return m.commitUpdate(ctx, alloc, planner.AllocationPatch{Start: &start, End: &end})
}

// =============================================================================
// EDIT DIALOG AND EXPLICIT DELETE
// =============================================================================

// SubmitEdit applies the edit dialog (opened by double-click): start date,
// end date, hours per day. Validation failures are rejected before any
// request is sent.
func (m *Machine) SubmitEdit(ctx context.Context, allocationID string, start, end calendar.Day, hoursPerDay decimal.Decimal) (*planner.Allocation, error) {
	if m.mode != Idle {
		return nil, ErrGestureActive
	}
	if m.inflight[allocationID] {
		return nil, ErrAllocationBusy
	}
	if err := validateManualEdit(start, end, hoursPerDay); err != nil {
		return nil, err
	}
	alloc, ok := m.session.Allocation(allocationID)
	if !ok {
		return nil, planner.ErrNotFound
	}
	s, e, h := start, end, hoursPerDay
	return m.commitUpdate(ctx, alloc, planner.AllocationPatch{Start: &s, End: &e, HoursPerDay: &h})
}

// DeleteAllocation removes an allocation after explicit confirmation.
func (m *Machine) DeleteAllocation(ctx context.Context, allocationID string) error {
	if m.mode != Idle {
		return ErrGestureActive
	}
	if m.inflight[allocationID] {
		return ErrAllocationBusy
	}
	alloc, ok := m.session.Allocation(allocationID)
	if !ok {
		return planner.ErrNotFound
	}
	return m.commitDelete(ctx, alloc)
}

// =============================================================================
// COMMIT PLUMBING
// =============================================================================

func (m *Machine) commitCreate(ctx context.Context, draft planner.AllocationDraft) (*planner.Allocation, error) {
	created, err := m.storeCreate(ctx, draft)
	if err != nil {
		m.Cancel()
		return nil, err
	}
	m.session.addAllocation(created)
	m.finishCommit(draft.EmployeeID)
	return &created, nil
}

func (m *Machine) commitUpdate(ctx context.Context, alloc planner.Allocation, patch planner.AllocationPatch) (*planner.Allocation, error) {
	updated, err := m.storeUpdate(ctx, alloc.ID, patch)
	if err != nil {
		m.Cancel()
		return nil, err
	}
	m.session.replaceAllocation(updated)
	m.finishCommit(alloc.EmployeeID)
	return &updated, nil
}

func (m *Machine) commitDelete(ctx context.Context, alloc planner.Allocation) error {
	m.inflight[alloc.ID] = true
	err := m.store.DeleteAllocation(ctx, alloc.ID)
	delete(m.inflight, alloc.ID)
	if err != nil {
		m.Cancel()
		return &TransportError{Op: "delete", Err: err}
	}
	m.session.removeAllocation(alloc.ID)
	m.finishCommit(alloc.EmployeeID)
	return nil
}

func (m *Machine) storeCreate(ctx context.Context, draft planner.AllocationDraft) (planner.Allocation, error) {
	created, err := m.store.CreateAllocation(ctx, draft)
	if err != nil {
		return planner.Allocation{}, &TransportError{Op: "create", Err: err}
	}
	return created, nil
}

func (m *Machine) storeUpdate(ctx context.Context, id string, patch planner.AllocationPatch) (planner.Allocation, error) {
	m.inflight[id] = true
	updated, err := m.store.UpdateAllocation(ctx, id, patch)
	delete(m.inflight, id)
	if err != nil {
		return planner.Allocation{}, &TransportError{Op: "update", Err: err}
	}
	return updated, nil
}

// finishCommit runs the shared post-commit protocol: recompute the
// affected employee's cached hours, notify dependents, return to Idle.
func (m *Machine) finishCommit(employeeID string) {
	m.session.recomputeAllocated(employeeID)
	m.Cancel()
	if m.bus != nil {
		m.bus.Publish(signal.AllocationChanged)
	}
}

// abortWithRecompute restores Idle after a rolled-back multi-step commit,
// recomputing any rows the rollback may have touched.
func (m *Machine) abortWithRecompute(employeeIDs map[string]bool) {
	for id := range employeeIDs {
		m.session.recomputeAllocated(id)
	}
	m.Cancel()
}

func distance(a, b grid.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
