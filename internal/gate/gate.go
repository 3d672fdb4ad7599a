// Package gate decides what the portal shows for a given path and session
// state. Evaluate is a pure function so every navigation produces exactly
// one deterministic outcome.
package gate

import (
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Decision is the single outcome of evaluating a navigation.
type Decision int

const (
	// Loading means session restoration is still in flight; render
	// nothing yet.
	Loading Decision = iota

	// Render lets the requested route through.
	Render

	// RedirectLogin sends an unauthenticated visitor to the login page.
	RedirectLogin

	// RedirectUnauthorized sends an authenticated caller whose role is
	// not allowed on the route to the unauthorized page.
	RedirectUnauthorized

	// RedirectOnboarding forces an employee with an incomplete profile
	// to the first-login flow.
	RedirectOnboarding

	// RedirectEmployeeHome and RedirectHRHome resolve the root path for
	// an authenticated caller by role.
	RedirectEmployeeHome
	RedirectHRHome
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectUnauthorized:
		return "redirect-unauthorized"
	case RedirectOnboarding:
		return "redirect-onboarding"
	case RedirectEmployeeHome:
		return "redirect-employee-home"
	case RedirectHRHome:
		return "redirect-hr-home"
	}
	return "unknown"
}

// State is the session snapshot the gate evaluates against. Identity is nil
// when nobody is logged in.
type State struct {
	// Pending is true while session restoration has not finished.
	Pending  bool
	Identity *types.User
}

// Route describes one guarded path.
type Route struct {
	Path string

	// AllowedRoles is the set of roles that may render the route. Empty
	// means any authenticated caller.
	AllowedRoles []types.Role

	// ExemptFromOnboarding marks routes an employee may visit before
	// completing their profile, such as the onboarding flow itself.
	ExemptFromOnboarding bool

	// PublicOnly marks routes for visitors, like the login page. An
	// already-authenticated caller is sent to their home instead.
	PublicOnly bool
}

func (r Route) allows(role types.Role) bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Evaluate applies the guard checks in a fixed order: loading first, then
// authentication, then role, then onboarding. The first check that fires
// wins, so an unauthenticated visitor on a role-guarded path is sent to
// login, never to unauthorized.
func Evaluate(state State, route Route) Decision {
	if state.Pending {
		return Loading
	}
	if route.PublicOnly {
		if state.Identity == nil {
			return Render
		}
		return roleHome(state.Identity.Role)
	}
	if state.Identity == nil {
		return RedirectLogin
	}
	if !route.allows(state.Identity.Role) {
		return RedirectUnauthorized
	}
	if state.Identity.Role == types.RoleEmployee &&
		!state.Identity.HasCompletedFirstLogin &&
		!route.ExemptFromOnboarding {
		return RedirectOnboarding
	}
	return Render
}

// ResolveRoot routes the bare "/" path: by role for an authenticated
// caller, to login otherwise.
func ResolveRoot(state State) Decision {
	if state.Pending {
		return Loading
	}
	if state.Identity == nil {
		return RedirectLogin
	}
	return roleHome(state.Identity.Role)
}

func roleHome(role types.Role) Decision {
	if role == types.RoleHR {
		return RedirectHRHome
	}
	return RedirectEmployeeHome
}

// EvaluatePath resolves any path against the route table. Paths not in the
// table behave like a wildcard route: they fall through to the root, so an
// unauthenticated visitor on an unknown path still lands on login.
func EvaluatePath(state State, path string) Decision {
	if route, ok := Lookup(path); ok {
		return Evaluate(state, route)
	}
	return ResolveRoot(state)
}
