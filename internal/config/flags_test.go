package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "no flags leaves zero values",
			args: nil,
			want: func(t *testing.T, cfg *StructuredConfig) {
				assert.Empty(t, cfg.Adapter.BaseURL)
				assert.Empty(t, cfg.Storage.DBPath)
				assert.Zero(t, cfg.Sync.Interval)
			},
		},
		{
			name: "short flags",
			args: []string{"-s", "https://flag.example", "-d", "/flag.db", "-c", "/etc/wardrobe.json"},
			want: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "https://flag.example", cfg.Adapter.BaseURL)
				assert.Equal(t, "/flag.db", cfg.Storage.DBPath)
				assert.Equal(t, "/etc/wardrobe.json", cfg.JSONFilePath)
			},
		},
		{
			name: "tuning flags",
			args: []string{
				"-auth-token", "tok",
				"-request-timeout", "30s",
				"-sync-interval", "1m",
				"-batch-size", "9",
				"-batch-concurrency", "2",
				"-backoff-floor", "1s",
				"-backoff-ceiling", "4m",
				"-probe-interval", "20s",
				"-debounce", "5s",
			},
			want: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "tok", cfg.Adapter.AuthToken)
				assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
				assert.Equal(t, time.Minute, cfg.Sync.Interval)
				assert.Equal(t, 9, cfg.Sync.BatchSize)
				assert.Equal(t, 2, cfg.Sync.BatchConcurrency)
				assert.Equal(t, time.Second, cfg.Sync.BackoffFloor)
				assert.Equal(t, 4*time.Minute, cfg.Sync.BackoffCeiling)
				assert.Equal(t, 20*time.Second, cfg.Netmon.ProbeInterval)
				assert.Equal(t, 5*time.Second, cfg.Netmon.Debounce)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flag.CommandLine for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

			oldArgs := os.Args
			os.Args = append([]string{"wardrobe"}, tt.args...)
			defer func() { os.Args = oldArgs }()

			cfg := ParseFlags()
			tt.want(t, cfg)
		})
	}
}
