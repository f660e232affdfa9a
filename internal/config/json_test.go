package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_FullConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"storage": {"db_path": "/data/wardrobe.db"},
		"adapter": {
			"base_url": "https://api.vangarments.example",
			"request_timeout": "25s",
			"auth_token": "json-token"
		},
		"sync": {
			"interval": "90s",
			"batch_size": 10,
			"batch_concurrency": 2,
			"backoff_floor": "500ms",
			"backoff_ceiling": "2m"
		},
		"netmon": {"probe_interval": "15s", "debounce": "1s"}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/wardrobe.db", cfg.Storage.DBPath)
	assert.Equal(t, "https://api.vangarments.example", cfg.Adapter.BaseURL)
	assert.Equal(t, 25*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "json-token", cfg.Adapter.AuthToken)
	assert.Equal(t, 90*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 10, cfg.Sync.BatchSize)
	assert.Equal(t, 2, cfg.Sync.BatchConcurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.BackoffFloor)
	assert.Equal(t, 2*time.Minute, cfg.Sync.BackoffCeiling)
	assert.Equal(t, 15*time.Second, cfg.Netmon.ProbeInterval)
	assert.Equal(t, time.Second, cfg.Netmon.Debounce)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/nonexistent/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{"storage": `)

	_, err := parseJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
		fails bool
	}{
		{name: "duration string", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "plain nanoseconds", input: `5000000000`, want: 5 * time.Second},
		{name: "bad string", input: `"soon"`, fails: true},
		{name: "wrong type", input: `["1s"]`, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
