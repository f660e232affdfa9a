package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid remote transport settings
	// (for example, a missing base URL or negative timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid sync coordinator settings
	// (for example, a backoff ceiling below the floor).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidNetmonConfigs indicates invalid connectivity monitor settings.
	ErrInvalidNetmonConfigs = errors.New("invalid netmon configuration")
)
