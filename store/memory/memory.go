// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of the planning store
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	nextAllocID int64

	employees   map[string]planner.Employee
	projects    map[string]planner.Project
	allocations map[string]planner.Allocation
	holidays    map[string]planner.Holiday
	vacations   map[string]planner.Vacation
	settings    *planner.Settings
}

func New() *Store {
	return &Store{
		employees:   make(map[string]planner.Employee),
		projects:    make(map[string]planner.Project),
		allocations: make(map[string]planner.Allocation),
		holidays:    make(map[string]planner.Holiday),
		vacations:   make(map[string]planner.Vacation),
	}
}

// =============================================================================
// ALLOCATIONS (the gesture mutation boundary)
// =============================================================================

// CreateAllocation assigns the next creation-ordered numeric id.
func (s *Store) CreateAllocation(_ context.Context, draft planner.AllocationDraft) (planner.Allocation, error) {
	if draft.End.Before(draft.Start) {
		return planner.Allocation{}, planner.ErrInvalidDateRange
	}
	if draft.HoursPerDay.IsNegative() {
		return planner.Allocation{}, planner.ErrNegativeHours
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAllocID++
	a := planner.Allocation{
		ID:          strconv.FormatInt(s.nextAllocID, 10),
		EmployeeID:  draft.EmployeeID,
		ProjectID:   draft.ProjectID,
		Start:       draft.Start,
		End:         draft.End,
		HoursPerDay: draft.HoursPerDay,
		Status:      draft.Status,
	}
	s.allocations[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAllocation(_ context.Context, id string, patch planner.AllocationPatch) (planner.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.allocations[id]
	if !ok {
		return planner.Allocation{}, planner.ErrNotFound
	}
	a = patch.Apply(a)
	if a.End.Before(a.Start) {
		return planner.Allocation{}, planner.ErrInvalidDateRange
	}
	if a.HoursPerDay.IsNegative() {
		return planner.Allocation{}, planner.ErrNegativeHours
	}
	s.allocations[id] = a
	return a, nil
}

func (s *Store) DeleteAllocation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.allocations[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.allocations, id)
	return nil
}

func (s *Store) GetAllocation(_ context.Context, id string) (planner.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.allocations[id]
	if !ok {
		return planner.Allocation{}, planner.ErrNotFound
	}
	return a, nil
}

// ListAllocations returns all allocations in creation order.
func (s *Store) ListAllocations(_ context.Context) ([]planner.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Allocation, 0, len(s.allocations))
	for _, a := range s.allocations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return planner.CompareIDs(out[i].ID, out[j].ID) < 0
	})
	return out, nil
}

// =============================================================================
// TEAM MEMBERS / PROJECTS
// =============================================================================

func (s *Store) SaveTeamMember(_ context.Context, e planner.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) GetTeamMember(_ context.Context, id string) (planner.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return planner.Employee{}, planner.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListTeamMembers(_ context.Context) ([]planner.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteTeamMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

func (s *Store) SaveProject(_ context.Context, p planner.Project) (planner.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) ListProjects(_ context.Context) ([]planner.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

// =============================================================================
// HOLIDAYS / VACATIONS / SETTINGS
// =============================================================================

func (s *Store) SaveHoliday(_ context.Context, h planner.Holiday) (planner.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	s.holidays[h.ID] = h
	return h, nil
}

func (s *Store) ListHolidays(_ context.Context) ([]planner.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) DeleteHoliday(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holidays[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.holidays, id)
	return nil
}

func (s *Store) SaveVacation(_ context.Context, v planner.Vacation) (planner.Vacation, error) {
	if v.End.Before(v.Start) {
		return planner.Vacation{}, planner.ErrInvalidDateRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	s.vacations[v.ID] = v
	return v, nil
}

func (s *Store) ListVacations(_ context.Context) ([]planner.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Vacation, 0, len(s.vacations))
	for _, v := range s.vacations {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) DeleteVacation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vacations[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.vacations, id)
	return nil
}

// GetSettings returns the stored settings; ok is false when none were
// ever saved (available hours stay undefined).
func (s *Store) GetSettings(_ context.Context) (planner.Settings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return planner.Settings{}, false, nil
	}
	return *s.settings, true, nil
}

func (s *Store) SaveSettings(_ context.Context, settings planner.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

// Reset clears everything (dev/test only).
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = make(map[string]planner.Employee)
	s.projects = make(map[string]planner.Project)
	s.allocations = make(map[string]planner.Allocation)
	s.holidays = make(map[string]planner.Holiday)
	s.vacations = make(map[string]planner.Vacation)
	s.settings = nil
	s.nextAllocID = 0
	return nil
}
