package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseDSN_PrefersURL(t *testing.T) {
	cfg := DatabaseConfig{
		URL:  "postgres://u:p@db:5432/store?sslmode=require",
		Host: "ignored",
	}

	assert.Equal(t, "postgres://u:p@db:5432/store?sslmode=require", cfg.DSN())
}

func TestDatabaseDSN_BuildsFromParts(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "store",
		Password: "p@ss word",
		Database: "storefront",
		Schema:   "shop",
		SSLMode:  "disable",
	}

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/storefront", u.Path)
	assert.Equal(t, "store", u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pwd)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "shop", u.Query().Get("search_path"))
}

func TestDatabaseDSN_OmitsPublicSchema(t *testing.T) {
	cfg := DatabaseConfig{Host: "h", Port: "1", Schema: "public", SSLMode: "disable"}

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("search_path"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "test")

	cfg := Load()

	assert.Equal(t, "test", cfg.Server.Env)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, "postgres", cfg.Session.Store)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, int64(5*1024*1024), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 20, cfg.RateLimit.Requests)
}
