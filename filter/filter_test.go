package filter_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/capacity-planner/calendar"
	"github.com/warp/capacity-planner/filter"
	"github.com/warp/capacity-planner/planner"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

var (
	testProjects = []planner.Project{
		{ID: "p1", Name: "Website Redesign"},
		{ID: "p2", Name: "Mobile App"},
	}
	testRoles = []string{"Designer", "Developer"}

	alice = planner.Employee{ID: "alice", Name: "Alice Tremblay", Role: "Designer", Country: planner.CountryCanada}
	bruno = planner.Employee{ID: "bruno", Name: "Bruno Costa", Role: "Developer", Country: planner.CountryBrazil}
	carol = planner.Employee{ID: "carol", Name: "Carol Nguyen", Role: "Designer", Country: planner.CountryBrazil}
)

func allocOn(employeeID, projectID string) planner.Allocation {
	return planner.Allocation{
		ID:          "1",
		EmployeeID:  employeeID,
		ProjectID:   projectID,
		Start:       calendar.MustParseDay("2026-06-01"),
		End:         calendar.MustParseDay("2026-06-05"),
		HoursPerDay: decimal.NewFromInt(4),
		Status:      planner.StatusActive,
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse_TokenPriority(t *testing.T) {
	// GIVEN: Tokens matching projects, countries, roles, and a free name
	// THEN: Each token lands in its highest-priority category

	f := filter.Parse("website canada designer tremblay", testProjects, testRoles)

	assert.Equal(t, []string{"Website Redesign"}, f.Projects)
	assert.Equal(t, []planner.Country{planner.CountryCanada}, f.Countries)
	assert.Equal(t, []string{"Designer"}, f.Roles)
	assert.Equal(t, []string{"tremblay"}, f.Names)
}

func TestParse_CaseInsensitive(t *testing.T) {
	f := filter.Parse("BRAZIL Mobile", testProjects, testRoles)

	assert.Equal(t, []planner.Country{planner.CountryBrazil}, f.Countries)
	assert.Equal(t, []string{"Mobile App"}, f.Projects)
}

func TestParse_EmptyQuery(t *testing.T) {
	assert.True(t, filter.Parse("", testProjects, testRoles).Empty())
	assert.True(t, filter.Parse("   ", testProjects, testRoles).Empty())
}

func TestParse_UnknownTokenBecomesNameFragment(t *testing.T) {
	f := filter.Parse("zzz", testProjects, testRoles)
	assert.Equal(t, []string{"zzz"}, f.Names)
	assert.False(t, f.Empty())
}

// =============================================================================
// MATCHING
// =============================================================================

func TestMatch_CanadaDesigner(t *testing.T) {
	// GIVEN: The query "canada designer"
	// THEN: Only Canadian designers pass

	f := filter.Parse("canada designer", testProjects, testRoles)

	assert.True(t, f.Match(alice, nil, testProjects))
	assert.False(t, f.Match(bruno, nil, testProjects), "wrong role and country")
	assert.False(t, f.Match(carol, nil, testProjects), "designer but not Canadian")
}

func TestMatch_OrWithinCategory(t *testing.T) {
	f := filter.Parse("canada brazil", testProjects, testRoles)

	assert.True(t, f.Match(alice, nil, testProjects))
	assert.True(t, f.Match(bruno, nil, testProjects))
}

func TestMatch_ProjectRequiresAllocation(t *testing.T) {
	// GIVEN: A project filter
	// THEN: Only employees allocated to that project pass

	f := filter.Parse("website", testProjects, testRoles)

	assert.True(t, f.Match(alice, []planner.Allocation{allocOn("alice", "p1")}, testProjects))
	assert.False(t, f.Match(alice, []planner.Allocation{allocOn("alice", "p2")}, testProjects))
	assert.False(t, f.Match(alice, nil, testProjects))
}

func TestMatch_NameFragment(t *testing.T) {
	f := filter.Parse("trembl", testProjects, testRoles)

	assert.True(t, f.Match(alice, nil, testProjects))
	assert.False(t, f.Match(bruno, nil, testProjects))
}

func TestMatch_EmptyFiltersPassEveryone(t *testing.T) {
	f := filter.Parse("", testProjects, testRoles)

	for _, emp := range []planner.Employee{alice, bruno, carol} {
		assert.True(t, f.Match(emp, nil, testProjects))
	}
}
