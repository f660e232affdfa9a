package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the wardrobe
// sync engine. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Storage holds the on-device persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds settings for the remote wardrobe service transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the sync coordinator's timing and batching settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Netmon holds the connectivity monitor settings.
	Netmon Netmon `envPrefix:"NETMON_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage holds settings for the local sqlite store.
type Storage struct {
	// DBPath is the path of the sqlite database file. ":memory:" opens an
	// ephemeral store, used by tests.
	// Env: STORAGE_DB_PATH
	DBPath string `env:"DB_PATH"`
}

// Adapter holds network settings for the remote service client.
type Adapter struct {
	// BaseURL is the remote wardrobe service endpoint
	// (e.g. "https://api.vangarments.example").
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-request deadline for outbound calls.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthToken is the opaque bearer token attached to every request.
	// Env: ADAPTER_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Sync holds sync coordinator settings.
type Sync struct {
	// Interval is the period of the automatic background sync timer.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// BatchSize caps how many records travel in one push request.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// BatchConcurrency caps how many push batches are in flight at once.
	// Env: SYNC_BATCH_CONCURRENCY
	BatchConcurrency int `env:"BATCH_CONCURRENCY"`

	// BackoffFloor is the first retry delay after a network failure.
	// Env: SYNC_BACKOFF_FLOOR
	BackoffFloor time.Duration `env:"BACKOFF_FLOOR"`

	// BackoffCeiling caps the doubling retry delay.
	// Env: SYNC_BACKOFF_CEILING
	BackoffCeiling time.Duration `env:"BACKOFF_CEILING"`
}

// Netmon holds connectivity monitor settings.
type Netmon struct {
	// ProbeInterval is how often the monitor probes the remote service.
	// Env: NETMON_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// Debounce is how long a new connectivity state must hold before a
	// transition is reported. Filters flapping links.
	// Env: NETMON_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`
}

// Defaults applied by validate() for unset fields.
const (
	DefaultSyncInterval     = 5 * time.Minute
	DefaultBatchSize        = 20
	DefaultBatchConcurrency = 3
	DefaultBackoffFloor     = 2 * time.Second
	DefaultBackoffCeiling   = 5 * time.Minute
	DefaultRequestTimeout   = 15 * time.Second
	DefaultProbeInterval    = 10 * time.Second
	DefaultDebounce         = 2 * time.Second
)
