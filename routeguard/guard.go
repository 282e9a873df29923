// Package routeguard decides, at navigation time, whether a session may see
// a route. Decisions are synchronous functions of the current session
// snapshot; no guard ever touches the network or mutates the session.
package routeguard

import (
	"github.com/houseoftea/inventory-console/routes"
	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/users"
)

// Action is what the router should do with the guarded view.
type Action int

const (
	// ActionRender shows the guarded children
	ActionRender Action = iota
	// ActionRedirect navigates to Target instead
	ActionRedirect
)

// Decision is the outcome of evaluating a guard against a session.
type Decision struct {
	Action Action
	Target string
}

// Render reports whether the guarded children should be shown.
func (d Decision) Render() bool {
	return d.Action == ActionRender
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// AuthenticatedRedirect keeps already-logged-in users off the login screen:
// a session with a user is sent to its role's home area, anyone else sees
// the children. A role with no home area stays where it is.
func AuthenticatedRedirect(s session.Session) Decision {
	if s.User == nil {
		return render()
	}
	if home := routes.HomeFor(s.User.Role); home != "" {
		return redirect(home)
	}
	return render()
}

// RoleProtected admits only sessions whose role is in the allowed set.
// No token sends the visitor to the anonymous landing route; a token with a
// missing user or a role outside the set is silently redirected to the
// unauthorized view.
func RoleProtected(s session.Session, allowedRoles ...users.Role) Decision {
	if s.AccessToken == "" {
		return redirect(routes.RouteLanding)
	}
	if s.User == nil || !roleAllowed(s.User.Role, allowedRoles) {
		return redirect(routes.RouteUnauthorized)
	}
	return render()
}

// Protected admits any session holding a token.
func Protected(s session.Session) Decision {
	if s.AccessToken == "" {
		return redirect(routes.RouteLanding)
	}
	return render()
}

func roleAllowed(role users.Role, allowedRoles []users.Role) bool {
	for _, allowed := range allowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}
