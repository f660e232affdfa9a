package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-s server base URL
//	-d local database path
//	-c/-config json file path with configs
//	-auth-token bearer token for the remote service
//	-request-timeout outbound request timeout (e.g., "15s")
//	-sync-interval background sync period (e.g., "5m")
//	-batch-size max records per push batch
//	-batch-concurrency max push batches in flight
//	-backoff-floor first retry delay after a network failure
//	-backoff-ceiling cap for the doubling retry delay
//	-probe-interval connectivity probe period
//	-debounce minimum hold time before a connectivity transition is reported
func ParseFlags() *StructuredConfig {
	var baseURL string
	var dbPath string
	var jsonConfigPath string
	var authToken string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var batchSize int
	var batchConcurrency int
	var backoffFloor time.Duration
	var backoffCeiling time.Duration
	var probeInterval time.Duration
	var debounce time.Duration

	flag.StringVar(&baseURL, "s", "", "Remote service base URL")
	flag.StringVar(&dbPath, "d", "", "Local database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&authToken, "auth-token", "", "Bearer token for the remote service")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 15s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period (e.g., 5m)")
	flag.IntVar(&batchSize, "batch-size", 0, "Max records per push batch")
	flag.IntVar(&batchConcurrency, "batch-concurrency", 0, "Max push batches in flight")
	flag.DurationVar(&backoffFloor, "backoff-floor", 0, "First retry delay after a network failure")
	flag.DurationVar(&backoffCeiling, "backoff-ceiling", 0, "Cap for the doubling retry delay")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe period")
	flag.DurationVar(&debounce, "debounce", 0, "Connectivity transition debounce")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			DBPath: dbPath,
		},
		Adapter: Adapter{
			BaseURL:        baseURL,
			RequestTimeout: requestTimeout,
			AuthToken:      authToken,
		},
		Sync: Sync{
			Interval:         syncInterval,
			BatchSize:        batchSize,
			BatchConcurrency: batchConcurrency,
			BackoffFloor:     backoffFloor,
			BackoffCeiling:   backoffCeiling,
		},
		Netmon: Netmon{
			ProbeInterval: probeInterval,
			Debounce:      debounce,
		},
		JSONFilePath: jsonConfigPath,
	}
}
