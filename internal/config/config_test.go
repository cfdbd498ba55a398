package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file", func(t *testing.T) {
		// Given: a config file with redis storage
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
storage: redis
computer-delay: 250ms
random-seed: 42
redis:
  host: cache
  port: "6380"
  session-ttl: 1h
`)

		// When: the config is loaded
		conf, err := Load(path)

		// Then: every value comes from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage)
		assert.Equal(t, 250*time.Millisecond, conf.ComputerDelay)
		assert.Equal(t, int64(42), conf.RandomSeed)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, time.Hour, conf.Redis.SessionTTL)
	})

	t.Run("Falls back to defaults without a file", func(t *testing.T) {
		// When: the file does not exist
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: defaults are used
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, StorageMemory, conf.Storage)
		assert.Equal(t, 500*time.Millisecond, conf.ComputerDelay)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7000")
		path := writeConfig(t, "http-port: \"8080\"\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7000", conf.HTTPPort)
	})

	t.Run("Rejects unknown storage", func(t *testing.T) {
		path := writeConfig(t, "storage: postgres\n")

		_, err := Load(path)

		assert.ErrorContains(t, err, "unknown storage")
	})

	t.Run("MustLoad panics on invalid config", func(t *testing.T) {
		path := writeConfig(t, "computer-delay: -1s\n")

		assert.Panics(t, func() { MustLoad(path) })
	})
}
