package hookhttp

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
)

func guarded(g manifest.Guard) bool {
	return g.RequireAuth || len(g.Users) > 0 || len(g.Roles) > 0
}

// allow applies g to the request and writes the rejection when it fails.
func allow(w http.ResponseWriter, r *http.Request, a *auth.Middleware, g manifest.Guard) bool {
	if !guarded(g) {
		return true
	}
	// Without auth middleware wired, guarded points are closed.
	if a == nil || !a.IsAuthenticated(r.Context()) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if len(g.Users) > 0 && !a.IsUser(r.Context(), g.Users...) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	if len(g.Roles) > 0 && !a.HasRole(r.Context(), g.Roles...) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
