package httpx

import (
	"net/http"
	"slices"
)

// RequireRole rejects callers whose token role is not one of roles. The role
// claim can be stale, so handlers that grant privileges re-check the store.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
