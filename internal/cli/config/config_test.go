package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Second, cfg.Commit.FlushInterval)
	assert.Equal(t, 600, cfg.Commit.RateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `
server:
  port: 9090
  host: 0.0.0.0
  api_prefix: /api
database:
  driver: pgx
  url: postgresql://localhost/splash
cache:
  backend: redis
  redis_addr: redis:6379
  ttl: 30s
log:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile("splash.yml", []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Log.Development)

	found, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "splash.yml", filepath.Base(found))
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPLASH_SERVER_PORT", "7000")
	t.Setenv("SPLASH_CACHE_BACKEND", "redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoadFromExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 1234\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Server.Port)

	_, err = LoadFrom(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"prefix without slash", "server:\n  api_prefix: api\n", "must start with '/'"},
		{"prefix with trailing slash", "server:\n  api_prefix: /api/\n", "must not end with '/'"},
		{"unknown driver", "database:\n  driver: mysql\n", "database.driver"},
		{"unknown cache", "cache:\n  backend: memcached\n", "cache.backend"},
		{"unknown level", "log:\n  level: loud\n", "log.level"},
		{"negative rate limit", "commit:\n  rate_limit: -1\n", "commit.rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			require.NoError(t, os.WriteFile("splash.yml", []byte(tt.content), 0644))

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDatabaseURL(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DATABASE_URL", "postgres://env/db")
	assert.Equal(t, "postgres://env/db", GetDatabaseURL())

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "file:splash.db?cache=shared", GetDatabaseURL())
}
