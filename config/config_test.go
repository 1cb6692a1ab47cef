package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/pkg/kv"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  driver: sqlite3
  dsn: /tmp/portal.sqlite
jwt:
  secret: from-file
events:
  broker: none
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, BrokerNone, cfg.Events.Broker)

	kvCfg := cfg.ToKVConfig()
	assert.Equal(t, kv.DriverSQLite, kvCfg.Driver)
	assert.Equal(t, "/tmp/portal.sqlite", kvCfg.DSN)
	assert.Equal(t, "portal_kv", kvCfg.Table)
	assert.Equal(t, "portal:", kvCfg.Redis.Prefix)

	assert.Equal(t, "redis://localhost:6379/0", cfg.ToBrokerConfig().URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("PORTAL_JWT_SECRET", "from-env")
	t.Setenv("PORTAL_PORT", "7000")
	t.Setenv("PORTAL_STORAGE_DRIVER", "memory")
	t.Setenv("PORTAL_RATE_LIMIT_BURST", "99")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, kv.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 99, cfg.RateLimit.Burst)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.ErrorContains(t, err, "jwt secret")

	_, err = Load(writeConfig(t, "jwt:\n  secret: s\nstorage:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = Load(writeConfig(t, "jwt:\n  secret: s\nevents:\n  broker: kafka\n"))
	assert.ErrorContains(t, err, "unknown events broker")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
