package gate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

func identity(role types.Role, completed bool) *types.User {
	return &types.User{
		ID:                     uuid.New(),
		Role:                   role,
		HasCompletedFirstLogin: completed,
	}
}

func employeeRoute(t *testing.T) Route {
	t.Helper()
	route, ok := Lookup(PathDashboard)
	require.True(t, ok)
	return route
}

func hrRoute(t *testing.T) Route {
	t.Helper()
	route, ok := Lookup(PathHRDashboard)
	require.True(t, ok)
	return route
}

func TestEvaluate_LoadingBeatsEverything(t *testing.T) {
	// Even a state that would trip every later check renders nothing
	// while restoration is pending.
	state := State{Pending: true, Identity: nil}
	assert.Equal(t, Loading, Evaluate(state, hrRoute(t)))
}

func TestEvaluate_UnauthenticatedGoesToLogin(t *testing.T) {
	state := State{}
	for _, route := range Routes {
		if route.PublicOnly {
			continue
		}
		assert.Equal(t, RedirectLogin, Evaluate(state, route), route.Path)
	}
}

func TestEvaluate_LoginPage(t *testing.T) {
	route, ok := Lookup(PathLogin)
	require.True(t, ok)

	// Visitors see the login page; anyone already logged in is sent home.
	assert.Equal(t, Render, Evaluate(State{}, route))
	assert.Equal(t, RedirectEmployeeHome, Evaluate(State{Identity: identity(types.RoleEmployee, true)}, route))
	assert.Equal(t, RedirectHRHome, Evaluate(State{Identity: identity(types.RoleHR, true)}, route))
}

func TestLookup_RequestDetail(t *testing.T) {
	route, ok := Lookup("/request/" + uuid.NewString())
	require.True(t, ok)
	assert.Equal(t, PathRequestDetail, route.Path)
	assert.Empty(t, route.AllowedRoles)

	// A bare or nested path is not the detail route.
	_, ok = Lookup("/request/")
	assert.False(t, ok)
	_, ok = Lookup("/request/abc/extra")
	assert.False(t, ok)
}

func TestEvaluate_RequestDetailOpenToBothRoles(t *testing.T) {
	route, ok := Lookup("/request/" + uuid.NewString())
	require.True(t, ok)

	assert.Equal(t, RedirectLogin, Evaluate(State{}, route))
	assert.Equal(t, Render, Evaluate(State{Identity: identity(types.RoleEmployee, true)}, route))
	assert.Equal(t, Render, Evaluate(State{Identity: identity(types.RoleHR, true)}, route))
	// Onboarding still gates an incomplete employee here.
	assert.Equal(t, RedirectOnboarding, Evaluate(State{Identity: identity(types.RoleEmployee, false)}, route))
}

func TestEvaluatePath_UnknownFallsThroughToRoot(t *testing.T) {
	// Unknown paths behave like the wildcard: login when anonymous, the
	// role home otherwise. Never a blind render.
	assert.Equal(t, RedirectLogin, EvaluatePath(State{}, "/no-such-page"))
	assert.Equal(t, RedirectHRHome, EvaluatePath(State{Identity: identity(types.RoleHR, true)}, "/no-such-page"))
	assert.Equal(t, RedirectEmployeeHome, EvaluatePath(State{Identity: identity(types.RoleEmployee, true)}, PathRoot))
	assert.Equal(t, RedirectLogin, EvaluatePath(State{}, "/request/"+uuid.NewString()))
}

func TestEvaluate_RoleCheckBeforeOnboarding(t *testing.T) {
	// An incomplete employee on an hr route is unauthorized, not sent to
	// onboarding; the role check fires first.
	state := State{Identity: identity(types.RoleEmployee, false)}
	assert.Equal(t, RedirectUnauthorized, Evaluate(state, hrRoute(t)))
}

func TestEvaluate_IncompleteEmployeeForcedToOnboarding(t *testing.T) {
	state := State{Identity: identity(types.RoleEmployee, false)}
	assert.Equal(t, RedirectOnboarding, Evaluate(state, employeeRoute(t)))
}

func TestEvaluate_OnboardingRouteIsExempt(t *testing.T) {
	state := State{Identity: identity(types.RoleEmployee, false)}
	route, ok := Lookup(PathFirstLogin)
	require.True(t, ok)
	assert.Equal(t, Render, Evaluate(state, route))
}

func TestEvaluate_CompletedEmployeeRenders(t *testing.T) {
	state := State{Identity: identity(types.RoleEmployee, true)}
	assert.Equal(t, Render, Evaluate(state, employeeRoute(t)))
}

func TestEvaluate_HRNeverSentToOnboarding(t *testing.T) {
	// The onboarding check only applies to employees.
	state := State{Identity: identity(types.RoleHR, false)}
	assert.Equal(t, Render, Evaluate(state, hrRoute(t)))
}

func TestEvaluate_HRBlockedFromEmployeeRoutes(t *testing.T) {
	state := State{Identity: identity(types.RoleHR, true)}
	assert.Equal(t, RedirectUnauthorized, Evaluate(state, employeeRoute(t)))
}

func TestEvaluate_UnrestrictedRouteAllowsAnyRole(t *testing.T) {
	route := Route{Path: "/help"}
	assert.Equal(t, Render, Evaluate(State{Identity: identity(types.RoleHR, true)}, route))
	assert.Equal(t, Render, Evaluate(State{Identity: identity(types.RoleEmployee, true)}, route))
}

func TestEvaluate_Deterministic(t *testing.T) {
	state := State{Identity: identity(types.RoleEmployee, false)}
	route := employeeRoute(t)
	first := Evaluate(state, route)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(state, route))
	}
}

func TestResolveRoot(t *testing.T) {
	assert.Equal(t, Loading, ResolveRoot(State{Pending: true}))
	assert.Equal(t, RedirectLogin, ResolveRoot(State{}))
	assert.Equal(t, RedirectHRHome, ResolveRoot(State{Identity: identity(types.RoleHR, true)}))
	assert.Equal(t, RedirectEmployeeHome, ResolveRoot(State{Identity: identity(types.RoleEmployee, true)}))
}
