package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when an operation references an item id that is
	// absent from the local store. Callers must be able to tell this apart
	// from a storage failure, so it never wraps ErrStorageUnavailable.
	ErrNotFound = errors.New("item was not found")

	// ErrStorageUnavailable is returned (wrapped) whenever the sqlite layer
	// itself fails: connection gone, disk full, schema missing. Fatal for the
	// current operation and never retried automatically.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrBlobNotFound is returned when an image blob is requested for an item
	// that has no locally cached bytes.
	ErrBlobNotFound = errors.New("image blob was not found")

	// ErrPurgePending is returned when a purge targets a record that still has
	// unsynced local changes. A record must never leave the store while its
	// state has not been acknowledged by the server.
	ErrPurgePending = errors.New("cannot purge record awaiting sync")
)
