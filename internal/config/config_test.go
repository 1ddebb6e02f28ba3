package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Zero(t, cfg.RateLimit.RPS)
	assert.Empty(t, cfg.CORS.Origins())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ASTROQUIZ_PORT", "8080")
	t.Setenv("ASTROQUIZ_DB_DRIVER", "Postgres")
	t.Setenv("ASTROQUIZ_DB_DSN", "postgres://localhost/astroquiz?sslmode=disable")
	t.Setenv("ASTROQUIZ_CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://astroquiz.example")
	t.Setenv("ASTROQUIZ_RATE_LIMIT_RPS", "2.5")
	t.Setenv("ASTROQUIZ_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"http://localhost:5173", "https://astroquiz.example"}, cfg.CORS.Origins())
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, "json", cfg.Logging.Logger().Format)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ASTROQUIZ_PORT=6001\nASTROQUIZ_STATIC_DIR=/srv/public\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ASTROQUIZ_PORT")
		os.Unsetenv("ASTROQUIZ_STATIC_DIR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, "/srv/public", cfg.Server.StaticDir)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("ASTROQUIZ_DB_DRIVER", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "ASTROQUIZ_DB_DSN")

	cfg := Config{Database: DatabaseConfig{Driver: "mongo"}}
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")

	cfg = Config{Database: DatabaseConfig{Driver: DriverMemory}, Server: ServerConfig{Port: 70000}}
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = Config{Database: DatabaseConfig{Driver: DriverMemory}, RateLimit: RateLimitConfig{RPS: 1}}
	assert.ErrorContains(t, cfg.Validate(), "burst")
}
