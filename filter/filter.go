/*
Package filter parses free-text search into structured employee filters.

PURPOSE:
  The team list has a single search box. Each whitespace token is matched,
  case-insensitively and in priority order, against project names
  (substring), literal country names, role names (substring), and finally
  falls back to a name fragment. Tokens accumulate into independent filter
  sets combined with AND across categories and OR within a category.

EXAMPLE:
  "canada designer" -> Countries=[Canada], Roles=[Designer]; the employee
  list narrows to Canadian designers.
*/
package filter

import (
	"strings"

	"github.com/warp/capacity-planner/planner"
)

// Filters holds the accumulated filter sets. Project, country, and role
// entries are canonical names (as configured); Names are raw lowercase
// fragments matched as substrings of employee names.
type Filters struct {
	Projects  []string
	Countries []planner.Country
	Roles     []string
	Names     []string
}

// Empty reports whether no filter is active (every employee passes).
func (f Filters) Empty() bool {
	return len(f.Projects) == 0 && len(f.Countries) == 0 && len(f.Roles) == 0 && len(f.Names) == 0
}

// Parse tokenizes the query against the configured projects and roles.
func Parse(query string, projects []planner.Project, roles []string) Filters {
	var f Filters
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if name, ok := matchProject(token, projects); ok {
			f.Projects = append(f.Projects, name)
			continue
		}
		if c, ok := matchCountry(token); ok {
			f.Countries = append(f.Countries, c)
			continue
		}
		if role, ok := matchRole(token, roles); ok {
			f.Roles = append(f.Roles, role)
			continue
		}
		f.Names = append(f.Names, token)
	}
	return f
}

func matchProject(token string, projects []planner.Project) (string, bool) {
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), token) {
			return p.Name, true
		}
	}
	return "", false
}

func matchCountry(token string) (planner.Country, bool) {
	for _, c := range planner.Countries() {
		if token == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return "", false
}

func matchRole(token string, roles []string) (string, bool) {
	for _, r := range roles {
		if strings.Contains(strings.ToLower(r), token) {
			return r, true
		}
	}
	return "", false
}

// Match reports whether the employee passes the filters. Within a category
// any listed value may match; across categories every non-empty category
// must match. Project filters pass when the employee has an allocation on
// any listed project.
func (f Filters) Match(emp planner.Employee, allocations []planner.Allocation, projects []planner.Project) bool {
	if !f.matchNames(emp) || !f.matchCountry(emp) || !f.matchRoles(emp) {
		return false
	}
	return f.matchProjects(emp, allocations, projects)
}

func (f Filters) matchNames(emp planner.Employee) bool {
	if len(f.Names) == 0 {
		return true
	}
	name := strings.ToLower(emp.Name)
	for _, fragment := range f.Names {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

func (f Filters) matchCountry(emp planner.Employee) bool {
	if len(f.Countries) == 0 {
		return true
	}
	for _, c := range f.Countries {
		if emp.Country == c {
			return true
		}
	}
	return false
}

func (f Filters) matchRoles(emp planner.Employee) bool {
	if len(f.Roles) == 0 {
		return true
	}
	for _, r := range f.Roles {
		if strings.EqualFold(emp.Role, r) {
			return true
		}
	}
	return false
}

func (f Filters) matchProjects(emp planner.Employee, allocations []planner.Allocation, projects []planner.Project) bool {
	if len(f.Projects) == 0 {
		return true
	}
	ids := make(map[string]bool)
	for _, p := range projects {
		for _, name := range f.Projects {
			if p.Name == name {
				ids[p.ID] = true
			}
		}
	}
	for _, a := range allocations {
		if a.EmployeeID == emp.ID && ids[a.ProjectID] {
			return true
		}
	}
	return false
}
