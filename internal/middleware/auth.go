package middleware

import (
	"context"
	"net/http"

	"santafe-store/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// IdentityResolver resolves the caller bound to the request's session
type IdentityResolver interface {
	Current(ctx context.Context) (domain.Identity, bool)
}

// RequireAuthenticated rejects requests without a bound session with 401
func RequireAuthenticated(sessions IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := sessions.Current(r.Context())
			if !ok {
				logger.Debug("Request without session",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", identity.UserID.String()),
				zap.Bool("is_admin", identity.IsAdmin),
			)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity stores the caller in ctx
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity extracts the caller from request context
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}
