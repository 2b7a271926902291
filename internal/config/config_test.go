package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEMPLAN_HOME", dir)
	t.Setenv("SEMPLAN_STORAGE_DRIVER", DriverPostgres)
	t.Setenv("SEMPLAN_PERSIST_DELAY_MS", "50")

	cfg := DefaultConfig()
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 50*time.Millisecond, cfg.PersistDelay())
	assert.Equal(t, filepath.Join(dir, "planner.db"), cfg.StorageDSN)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), Path())
}

func TestLoadFrom_MissingReturnsDefaults(t *testing.T) {
	t.Setenv("SEMPLAN_HOME", t.TempDir())

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_NormalizesPartialFile(t *testing.T) {
	t.Setenv("SEMPLAN_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_driver: mysql\npersist_delay_ms: 0\nlisten: ''\nlog_level: DEBUG\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 300, cfg.PersistDelayMS)
	assert.Equal(t, "127.0.0.1:8420", cfg.Listen)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	t.Setenv("SEMPLAN_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.BackupCron = ""
	cfg.LogConsole = true
	require.NoError(t, cfg.SaveTo(path))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
