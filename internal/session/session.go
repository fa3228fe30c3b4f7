// Package session is the session authority: it binds an authenticated user
// to an opaque cookie token and resolves the token back to an identity.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"santafe-store/internal/config"
	"santafe-store/internal/domain"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userIDKey  = "user_id"
	isAdminKey = "is_admin"
)

// Manager wraps an scs session manager with the storefront's identity model
type Manager struct {
	sm *scs.SessionManager
}

// NewManager configures the session cookie and lifetimes. secure marks the
// cookie HTTPS-only.
func NewManager(store scs.Store, cfg config.SessionConfig, secure bool) *Manager {
	sm := scs.New()
	sm.Store = store
	sm.IdleTimeout = cfg.IdleTimeout
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = cfg.CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	sm.Cookie.Persist = true
	sm.Cookie.Path = "/"

	return &Manager{sm: sm}
}

// SetErrorHandler replaces the response written when loading or saving a
// session fails
func (m *Manager) SetErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) {
	m.sm.ErrorFunc = fn
}

// LoadAndSave loads the session for every request and commits changes
// before the response is written
func (m *Manager) LoadAndSave(next http.Handler) http.Handler {
	return m.sm.LoadAndSave(next)
}

// Bind attaches user to the current session under a fresh token
func (m *Manager) Bind(ctx context.Context, user *domain.User) error {
	if err := m.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	m.sm.Put(ctx, userIDKey, user.ID.String())
	m.sm.Put(ctx, isAdminKey, user.IsAdmin)
	return nil
}

// Current returns the identity bound to the session, if any
func (m *Manager) Current(ctx context.Context) (domain.Identity, bool) {
	raw := m.sm.GetString(ctx, userIDKey)
	if raw == "" {
		return domain.Identity{}, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return domain.Identity{}, false
	}

	return domain.Identity{
		UserID:  userID,
		IsAdmin: m.sm.GetBool(ctx, isAdminKey),
	}, true
}

// Destroy ends the session. Destroying an anonymous session is not an error.
func (m *Manager) Destroy(ctx context.Context) error {
	if err := m.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// NewStore builds the server-side session store selected by cfg.Store. The
// returned stop function ends background cleanup and is safe to call once.
func NewStore(cfg config.SessionConfig, db *sql.DB, redisClient *redis.Client) (scs.Store, func(), error) {
	switch cfg.Store {
	case "", "postgres":
		if db == nil {
			return nil, nil, fmt.Errorf("postgres session store requires a database")
		}
		store := postgresstore.NewWithCleanupInterval(db, 30*time.Minute)
		return store, store.StopCleanup, nil
	case "redis":
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis session store requires a redis client")
		}
		return goredisstore.New(redisClient), func() {}, nil
	case "memory":
		store := memstore.New()
		return store, store.StopCleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
