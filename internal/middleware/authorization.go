package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403
func RequireAdmin(sessions IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := sessions.Current(r.Context())
			if !ok {
				RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}

			if !identity.IsAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", identity.UserID.String()),
					zap.String("path", r.URL.Path),
				)
				RespondWithErrorCode(w, http.StatusForbidden, "FORBIDDEN", "admin access required", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
