package config

import "fmt"

// Validate checks the configuration for inconsistencies and fills in defaults
// for unset tuning knobs. Exposed for callers that mutate a loaded config
// (e.g. CLI flag overrides) and need to re-validate.
func (c *StructuredConfig) Validate() error {
	return c.validate()
}

// validate checks the merged configuration for inconsistencies and fills in
// defaults for unset tuning knobs. Only the base URL is mandatory: the engine
// can run fully offline, but it has to know where to sync once connectivity
// appears.
func (c *StructuredConfig) validate() error {
	if c.Adapter.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidAdapterConfigs)
	}
	if c.Adapter.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout must not be negative", ErrInvalidAdapterConfigs)
	}
	if c.Adapter.RequestTimeout == 0 {
		c.Adapter.RequestTimeout = DefaultRequestTimeout
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidStorageConfigs)
	}

	if c.Sync.Interval < 0 {
		return fmt.Errorf("%w: sync interval must not be negative", ErrInvalidSyncConfigs)
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = DefaultSyncInterval
	}
	if c.Sync.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", ErrInvalidSyncConfigs)
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = DefaultBatchSize
	}
	if c.Sync.BatchConcurrency < 0 {
		return fmt.Errorf("%w: batch concurrency must not be negative", ErrInvalidSyncConfigs)
	}
	if c.Sync.BatchConcurrency == 0 {
		c.Sync.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.Sync.BackoffFloor == 0 {
		c.Sync.BackoffFloor = DefaultBackoffFloor
	}
	if c.Sync.BackoffCeiling == 0 {
		c.Sync.BackoffCeiling = DefaultBackoffCeiling
	}
	if c.Sync.BackoffFloor < 0 || c.Sync.BackoffCeiling < c.Sync.BackoffFloor {
		return fmt.Errorf("%w: backoff ceiling must be >= floor > 0", ErrInvalidSyncConfigs)
	}

	if c.Netmon.ProbeInterval == 0 {
		c.Netmon.ProbeInterval = DefaultProbeInterval
	}
	if c.Netmon.Debounce == 0 {
		c.Netmon.Debounce = DefaultDebounce
	}
	if c.Netmon.ProbeInterval < 0 || c.Netmon.Debounce < 0 {
		return fmt.Errorf("%w: netmon intervals must not be negative", ErrInvalidNetmonConfigs)
	}

	return nil
}
