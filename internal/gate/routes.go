package gate

import (
	"strings"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Portal paths. Segments starting with ":" match any value.
const (
	PathRoot          = "/"
	PathLogin         = "/login"
	PathUnauthorized  = "/unauthorized"
	PathFirstLogin    = "/first-login"
	PathDashboard     = "/dashboard"
	PathRequests      = "/requests"
	PathRequestDetail = "/request/:id"
	PathProfile       = "/profile"
	PathHRDashboard   = "/hr/dashboard"
	PathHRRequests    = "/hr/requests"
	PathHREmployees   = "/hr/employees"
)

// Routes is the portal's route table. The first-login flow is the only
// onboarding-exempt route, otherwise an incomplete employee could never
// finish onboarding. Request detail is open to any authenticated caller
// since both roles review documents there.
var Routes = []Route{
	{Path: PathLogin, PublicOnly: true},
	{Path: PathFirstLogin, AllowedRoles: []types.Role{types.RoleEmployee}, ExemptFromOnboarding: true},
	{Path: PathDashboard, AllowedRoles: []types.Role{types.RoleEmployee}},
	{Path: PathRequests, AllowedRoles: []types.Role{types.RoleEmployee}},
	{Path: PathRequestDetail},
	{Path: PathProfile, AllowedRoles: []types.Role{types.RoleEmployee}},
	{Path: PathHRDashboard, AllowedRoles: []types.Role{types.RoleHR}},
	{Path: PathHRRequests, AllowedRoles: []types.Role{types.RoleHR}},
	{Path: PathHREmployees, AllowedRoles: []types.Role{types.RoleHR}},
}

// Lookup finds the route matching a path. The second return is false for
// paths absent from the table.
func Lookup(path string) (Route, bool) {
	for _, route := range Routes {
		if matches(route.Path, path) {
			return route, true
		}
	}
	return Route{}, false
}

func matches(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if !strings.Contains(pattern, ":") {
		return false
	}
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patternSegs) != len(pathSegs) {
		return false
	}
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			if pathSegs[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}
