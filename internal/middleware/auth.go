// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
)

type AuthMiddleware struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, AppEnv: appEnv}
}

type tokenErrKey struct{}

// tokenRejected reports the reason a presented bearer token was not accepted, if any.
func tokenRejected(r *http.Request) (string, bool) {
	msg, ok := r.Context().Value(tokenErrKey{}).(string)
	return msg, ok
}

// Authenticate attaches the caller's identity when a valid bearer token is present.
// A missing or rejected token leaves the request anonymous so public reads still work;
// the rejection is remembered and reported by RequireAuth and RequireRole.
//
// DEV: Bearer dev-<id> (member) | Bearer dev-admin-<id> (admin). Otherwise Bearer <JWT(access)>.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" {
			next.ServeHTTP(w, r)
			return
		}
		reject := func(msg string) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenErrKey{}, msg)))
		}
		if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
			reject("missing bearer token")
			return
		}
		token := strings.TrimSpace(ah[7:])

		id, ok := m.devIdentity(token)
		if !ok {
			var err error
			id, err = m.TM.ParseAccess(token)
			if err != nil {
				reject("invalid access token")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func (m *AuthMiddleware) devIdentity(token string) (auth.Identity, bool) {
	if m.AppEnv != "dev" || !strings.HasPrefix(token, "dev-") {
		return auth.Identity{}, false
	}
	if uid, ok := strings.CutPrefix(token, "dev-admin-"); ok && uid != "" {
		return auth.Identity{ID: uid, Role: models.RoleAdmin}, true
	}
	uid := strings.TrimPrefix(token, "dev-")
	if uid == "" {
		return auth.Identity{}, false
	}
	return auth.Identity{ID: uid, Role: models.RoleMember}, true
}

// RequireAuth rejects anonymous requests. It must run after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	msg, ok := tokenRejected(r)
	if !ok {
		msg = "authentication required"
	}
	httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", msg)
}
