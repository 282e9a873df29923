package routes

import "github.com/houseoftea/inventory-console/users"

// Route path constants
// All navigation targets are defined here to ensure consistency and prevent typos
const (
	// Anonymous landing route (the login view)
	RouteLanding = "/"

	// Role-gated areas
	RouteStore  = "/store"
	RouteBranch = "/branch"

	// Shown on role-mismatch access, never with an error message
	RouteUnauthorized = "/unauthorized"
)

// HomeFor returns the home area for a role after login. Roles outside the
// closed set have no home area and the caller stays where it is.
func HomeFor(role users.Role) string {
	switch role {
	case users.RoleAdmin:
		return RouteStore
	case users.RoleBranchManager:
		return RouteBranch
	}
	return ""
}
