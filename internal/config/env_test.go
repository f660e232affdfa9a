package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_PopulatesAllGroups(t *testing.T) {
	t.Setenv("STORAGE_DB_PATH", "/tmp/wardrobe.db")
	t.Setenv("ADAPTER_BASE_URL", "https://api.vangarments.example")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "20s")
	t.Setenv("ADAPTER_AUTH_TOKEN", "secret-token")
	t.Setenv("SYNC_INTERVAL", "2m")
	t.Setenv("SYNC_BATCH_SIZE", "50")
	t.Setenv("SYNC_BATCH_CONCURRENCY", "5")
	t.Setenv("SYNC_BACKOFF_FLOOR", "1s")
	t.Setenv("SYNC_BACKOFF_CEILING", "10m")
	t.Setenv("NETMON_PROBE_INTERVAL", "30s")
	t.Setenv("NETMON_DEBOUNCE", "3s")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "/tmp/wardrobe.db", cfg.Storage.DBPath)
	assert.Equal(t, "https://api.vangarments.example", cfg.Adapter.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "secret-token", cfg.Adapter.AuthToken)
	assert.Equal(t, 2*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Equal(t, 5, cfg.Sync.BatchConcurrency)
	assert.Equal(t, time.Second, cfg.Sync.BackoffFloor)
	assert.Equal(t, 10*time.Minute, cfg.Sync.BackoffCeiling)
	assert.Equal(t, 30*time.Second, cfg.Netmon.ProbeInterval)
	assert.Equal(t, 3*time.Second, cfg.Netmon.Debounce)
}

func TestParseEnv_EmptyEnvironmentLeavesZeroValues(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Empty(t, cfg.Adapter.BaseURL)
	assert.Zero(t, cfg.Sync.Interval)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "not-a-duration")

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}

func TestParseEnv_JSONFilePath(t *testing.T) {
	t.Setenv("CONFIG", "/etc/wardrobe/config.json")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "/etc/wardrobe/config.json", cfg.JSONFilePath)
}
