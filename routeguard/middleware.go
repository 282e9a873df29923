package routeguard

import (
	"net/http"

	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/users"
)

// SessionSource supplies the session snapshot each navigation is judged
// against. The session store satisfies it.
type SessionSource interface {
	Snapshot() session.Session
}

// RequireRole mounts RoleProtected as middleware: requests whose session is
// not admitted are redirected instead of reaching the handler.
func RequireRole(sessions SessionSource, allowedRoles ...users.Role) func(http.Handler) http.Handler {
	return guardMiddleware(sessions, func(s session.Session) Decision {
		return RoleProtected(s, allowedRoles...)
	})
}

// RequireSession mounts Protected as middleware.
func RequireSession(sessions SessionSource) func(http.Handler) http.Handler {
	return guardMiddleware(sessions, Protected)
}

// RedirectAuthenticated mounts AuthenticatedRedirect as middleware, keeping
// logged-in users off the login view.
func RedirectAuthenticated(sessions SessionSource) func(http.Handler) http.Handler {
	return guardMiddleware(sessions, AuthenticatedRedirect)
}

func guardMiddleware(sessions SessionSource, guard func(session.Session) Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard(sessions.Snapshot())
			if decision.Action == ActionRedirect {
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
