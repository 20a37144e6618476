package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/certification-management/internal/auth"
)

// RequirePermissions allows the request through when the authenticated user
// holds at least one of the given permissions. Admin passes everything.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed := false
			for _, perm := range permissions {
				if user.HasPermission(perm) {
					allowed = true
					break
				}
			}

			if !allowed {
				slog.Warn("access denied: missing permission",
					"user_id", user.ID,
					"required_permissions", permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
