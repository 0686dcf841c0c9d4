package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lattice-erp/lattice/internal/platform/httpx"
	"github.com/lattice-erp/lattice/internal/shared"
)

// Middleware guards routes with bearer-token verification and role checks.
type Middleware struct {
	Tokens  *TokenManager
	Service *Service
	Logger  *slog.Logger
}

// Verify parses the Authorization header, validates the token and stores the
// resolved identity in the request context.
func (m Middleware) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httpx.Fail(w, http.StatusUnauthorized, "Unauthorized: Missing or invalid token format")
			return
		}

		claims, err := m.Tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.Fail(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
			return
		}

		identity, err := m.Service.Resolve(r.Context(), claims)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("resolve identity failed", slog.Int64("user_id", claims.UserID), slog.Any("error", err))
			}
			httpx.Fail(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to a single allowed role.
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Unauthorized: No user data found")
				return
			}
			if identity.Role != role {
				httpx.Fail(w, http.StatusForbidden, fmt.Sprintf("Access restricted: Allowed role is %q", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
