package middleware

import (
	"net/http"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
)

// RequireRole lets only the given role through. It must run after Authenticate.
func RequireRole(need models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			if !id.Authenticated() {
				unauthorized(w, r)
				return
			}
			if id.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "requires role "+string(need))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
