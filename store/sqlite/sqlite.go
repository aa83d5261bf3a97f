/*
Package sqlite provides the SQLite-backed implementation of the planning store.

PURPOSE:
  The store is the authoritative home of team members, projects,
  allocations, holidays, vacations, and settings. The calendar session
  round-trips every allocation mutation through here before updating its
  local list. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  team_members:  employee records
  projects:      project records (uuid ids)
  allocations:   INTEGER PRIMARY KEY AUTOINCREMENT - ids are therefore
                 creation-ordered, which cell stacking depends on
  holidays:      country-scoped holiday dates
  vacations:     per-employee time-off ranges
  settings:      single row (buffer percentage + weekly hours by country)

DATES:
  Stored as "YYYY-MM-DD" TEXT and parsed at local midnight via
  calendar.ParseDay. Never parse these with a UTC constructor.

CONCURRENCY:
  sync.RWMutex around the connection, WAL journal mode for concurrent
  readers.

USAGE:
  store, err := sqlite.New("./data/planner.db")   // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - store/memory: in-memory implementation for tests
  - gesture: defines the mutation-boundary interface this satisfies
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/planner"
)

// Store implements the planning store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health checks connectivity for the /api/health endpoint.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS team_members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		country TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#888888',
		start_date TEXT,
		end_date TEXT
	);

	-- AUTOINCREMENT keeps ids creation-ordered even across deletes.
	CREATE TABLE IF NOT EXISTS allocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		hours_per_day TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	);
	CREATE INDEX IF NOT EXISTS idx_allocations_employee
		ON allocations(employee_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_allocations_project
		ON allocations(employee_id, project_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		country TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vacations_employee
		ON vacations(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		buffer_pct TEXT,
		weekly_hours TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// CreateAllocation inserts a draft and returns the stored allocation with
// its creation-ordered id.
func (s *Store) CreateAllocation(ctx context.Context, draft planner.AllocationDraft) (planner.Allocation, error) {
	if draft.End.Before(draft.Start) {
		return planner.Allocation{}, planner.ErrInvalidDateRange
	}
	if draft.HoursPerDay.IsNegative() {
		return planner.Allocation{}, planner.ErrNegativeHours
	}
	if draft.Status == "" {
		draft.Status = planner.StatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO allocations (employee_id, project_id, start_date, end_date, hours_per_day, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		draft.EmployeeID, draft.ProjectID,
		draft.Start.String(), draft.End.String(),
		draft.HoursPerDay.String(), string(draft.Status))
	if err != nil {
		return planner.Allocation{}, fmt.Errorf("failed to create allocation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return planner.Allocation{}, fmt.Errorf("failed to read allocation id: %w", err)
	}

	return planner.Allocation{
		ID:          strconv.FormatInt(id, 10),
		EmployeeID:  draft.EmployeeID,
		ProjectID:   draft.ProjectID,
		Start:       draft.Start,
		End:         draft.End,
		HoursPerDay: draft.HoursPerDay,
		Status:      draft.Status,
	}, nil
}

// UpdateAllocation applies a partial update and returns the new record.
func (s *Store) UpdateAllocation(ctx context.Context, id string, patch planner.AllocationPatch) (planner.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getAllocationLocked(ctx, id)
	if err != nil {
		return planner.Allocation{}, err
	}
	next := patch.Apply(current)
	if next.End.Before(next.Start) {
		return planner.Allocation{}, planner.ErrInvalidDateRange
	}
	if next.HoursPerDay.IsNegative() {
		return planner.Allocation{}, planner.ErrNegativeHours
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE allocations SET start_date = ?, end_date = ?, hours_per_day = ?, status = ?
		WHERE id = ?`,
		next.Start.String(), next.End.String(), next.HoursPerDay.String(), string(next.Status), id)
	if err != nil {
		return planner.Allocation{}, fmt.Errorf("failed to update allocation %s: %w", id, err)
	}
	return next, nil
}

// DeleteAllocation removes an allocation.
func (s *Store) DeleteAllocation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

// GetAllocation loads a single allocation.
func (s *Store) GetAllocation(ctx context.Context, id string) (planner.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAllocationLocked(ctx, id)
}

func (s *Store) getAllocationLocked(ctx context.Context, id string) (planner.Allocation, error) {
	allocs, err := s.queryAllocations(ctx, `
		SELECT id, employee_id, project_id, start_date, end_date, hours_per_day, status
		FROM allocations WHERE id = ?`, id)
	if err != nil {
		return planner.Allocation{}, err
	}
	if len(allocs) == 0 {
		return planner.Allocation{}, planner.ErrNotFound
	}
	return allocs[0], nil
}

// ListAllocations returns all allocations in creation order.
func (s *Store) ListAllocations(ctx context.Context) ([]planner.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryAllocations(ctx, `
		SELECT id, employee_id, project_id, start_date, end_date, hours_per_day, status
		FROM allocations ORDER BY id ASC`)
}

// ListAllocationsForEmployee returns one employee's allocations in
// creation order.
func (s *Store) ListAllocationsForEmployee(ctx context.Context, employeeID string) ([]planner.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryAllocations(ctx, `
		SELECT id, employee_id, project_id, start_date, end_date, hours_per_day, status
		FROM allocations WHERE employee_id = ? ORDER BY id ASC`, employeeID)
}

func (s *Store) queryAllocations(ctx context.Context, query string, args ...any) ([]planner.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var out []planner.Allocation
	for rows.Next() {
		var (
			id                  int64
			empID, projID       string
			startStr, endStr    string
			hoursStr, statusStr string
		)
		if err := rows.Scan(&id, &empID, &projID, &startStr, &endStr, &hoursStr, &statusStr); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		start, err := calendar.ParseDay(startStr)
		if err != nil {
			return nil, err
		}
		end, err := calendar.ParseDay(endStr)
		if err != nil {
			return nil, err
		}
		hours, err := decimal.NewFromString(hoursStr)
		if err != nil {
			return nil, fmt.Errorf("bad hours_per_day for allocation %d: %w", id, err)
		}
		out = append(out, planner.Allocation{
			ID:          strconv.FormatInt(id, 10),
			EmployeeID:  empID,
			ProjectID:   projID,
			Start:       start,
			End:         end,
			HoursPerDay: hours,
			Status:      planner.AllocationStatus(statusStr),
		})
	}
	return out, rows.Err()
}

// =============================================================================
// TEAM MEMBERS
// =============================================================================

// SaveTeamMember inserts or replaces an employee record.
func (s *Store) SaveTeamMember(ctx context.Context, e planner.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (id, name, role, country) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role, country = excluded.country`,
		e.ID, e.Name, e.Role, string(e.Country))
	if err != nil {
		return fmt.Errorf("failed to save team member: %w", err)
	}
	return nil
}

func (s *Store) GetTeamMember(ctx context.Context, id string) (planner.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, err := s.queryTeamMembers(ctx,
		`SELECT id, name, role, country FROM team_members WHERE id = ?`, id)
	if err != nil {
		return planner.Employee{}, err
	}
	if len(members) == 0 {
		return planner.Employee{}, planner.ErrNotFound
	}
	return members[0], nil
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]planner.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTeamMembers(ctx,
		`SELECT id, name, role, country FROM team_members ORDER BY name ASC`)
}

func (s *Store) DeleteTeamMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team member %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

func (s *Store) queryTeamMembers(ctx context.Context, query string, args ...any) ([]planner.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var out []planner.Employee
	for rows.Next() {
		var e planner.Employee
		var country string
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &country); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		e.Country = planner.Country(country)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// PROJECTS
// =============================================================================

// SaveProject inserts or replaces a project, assigning a uuid when the
// id is empty.
func (s *Store) SaveProject(ctx context.Context, p planner.Project) (planner.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var startStr, endStr sql.NullString
	if p.StartDate != nil {
		startStr = sql.NullString{String: p.StartDate.String(), Valid: true}
	}
	if p.EndDate != nil {
		endStr = sql.NullString{String: p.EndDate.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, color, start_date, end_date) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color,
			start_date = excluded.start_date, end_date = excluded.end_date`,
		p.ID, p.Name, p.Color, startStr, endStr)
	if err != nil {
		return planner.Project{}, fmt.Errorf("failed to save project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]planner.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, start_date, end_date FROM projects ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []planner.Project
	for rows.Next() {
		var p planner.Project
		var startStr, endStr sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if startStr.Valid {
			d, err := calendar.ParseDay(startStr.String)
			if err != nil {
				return nil, err
			}
			p.StartDate = &d
		}
		if endStr.Valid {
			d, err := calendar.ParseDay(endStr.String)
			if err != nil {
				return nil, err
			}
			p.EndDate = &d
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h planner.Holiday) (planner.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, name, date, country) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, date = excluded.date, country = excluded.country`,
		h.ID, h.Name, h.Date.String(), string(h.Country))
	if err != nil {
		return planner.Holiday{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return h, nil
}

func (s *Store) ListHolidays(ctx context.Context) ([]planner.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date, country FROM holidays ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []planner.Holiday
	for rows.Next() {
		var h planner.Holiday
		var dateStr, country string
		if err := rows.Scan(&h.ID, &h.Name, &dateStr, &country); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		d, err := calendar.ParseDay(dateStr)
		if err != nil {
			return nil, err
		}
		h.Date = d
		h.Country = planner.Country(country)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

// =============================================================================
// VACATIONS
// =============================================================================

func (s *Store) SaveVacation(ctx context.Context, v planner.Vacation) (planner.Vacation, error) {
	if v.End.Before(v.Start) {
		return planner.Vacation{}, planner.ErrInvalidDateRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacations (id, employee_id, start_date, end_date, type) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET employee_id = excluded.employee_id,
			start_date = excluded.start_date, end_date = excluded.end_date, type = excluded.type`,
		v.ID, v.EmployeeID, v.Start.String(), v.End.String(), string(v.Type))
	if err != nil {
		return planner.Vacation{}, fmt.Errorf("failed to save vacation: %w", err)
	}
	return v, nil
}

func (s *Store) ListVacations(ctx context.Context) ([]planner.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, start_date, end_date, type FROM vacations ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacations: %w", err)
	}
	defer rows.Close()

	var out []planner.Vacation
	for rows.Next() {
		var v planner.Vacation
		var startStr, endStr, typ string
		if err := rows.Scan(&v.ID, &v.EmployeeID, &startStr, &endStr, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan vacation: %w", err)
		}
		start, err := calendar.ParseDay(startStr)
		if err != nil {
			return nil, err
		}
		end, err := calendar.ParseDay(endStr)
		if err != nil {
			return nil, err
		}
		v.Start, v.End = start, end
		v.Type = planner.VacationType(typ)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DeleteVacation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM vacations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings loads the single settings row; ok is false when it was
// never saved (the engine treats that as "not configured").
func (s *Store) GetSettings(ctx context.Context) (planner.Settings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT buffer_pct, weekly_hours FROM settings WHERE id = 1`)
	var bufferStr sql.NullString
	var weeklyJSON string
	if err := row.Scan(&bufferStr, &weeklyJSON); err != nil {
		if err == sql.ErrNoRows {
			return planner.Settings{}, false, nil
		}
		return planner.Settings{}, false, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings planner.Settings
	if bufferStr.Valid {
		buffer, err := decimal.NewFromString(bufferStr.String)
		if err != nil {
			return planner.Settings{}, false, fmt.Errorf("bad buffer_pct: %w", err)
		}
		settings.BufferPct = &buffer
	}
	raw := map[string]string{}
	if err := json.Unmarshal([]byte(weeklyJSON), &raw); err != nil {
		return planner.Settings{}, false, fmt.Errorf("bad weekly_hours: %w", err)
	}
	settings.WeeklyHours = make(map[planner.Country]decimal.Decimal, len(raw))
	for country, hoursStr := range raw {
		hours, err := decimal.NewFromString(hoursStr)
		if err != nil {
			return planner.Settings{}, false, fmt.Errorf("bad weekly_hours for %s: %w", country, err)
		}
		settings.WeeklyHours[planner.Country(country)] = hours
	}
	return settings, true, nil
}

// SaveSettings replaces the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings planner.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]string, len(settings.WeeklyHours))
	for country, hours := range settings.WeeklyHours {
		raw[string(country)] = hours.String()
	}
	weeklyJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode weekly_hours: %w", err)
	}

	var bufferStr sql.NullString
	if settings.BufferPct != nil {
		bufferStr = sql.NullString{String: settings.BufferPct.String(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, buffer_pct, weekly_hours) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET buffer_pct = excluded.buffer_pct, weekly_hours = excluded.weekly_hours`,
		bufferStr, string(weeklyJSON))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all tables (dev/demo only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"team_members", "projects", "allocations", "holidays", "vacations", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	// Restart allocation numbering so demo scenarios get stable ids. The
	// sequence table only exists once an autoincrement insert happened.
	_, err := s.db.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'allocations'`)
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return nil
	}
	return err
}
