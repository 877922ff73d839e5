package middleware

import (
	"net/http"

	"github.com/poofware/cinema-api/internal/http/response"
)

// RequireRole layers role authorization on top of the authentication gate.
// The role claim is trusted as issued: a role change on the account takes
// effect only once the user's existing tokens expire or are revoked.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			if claims.Role != role {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]string{"required": role})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
