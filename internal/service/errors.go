package service

import (
	"errors"

	"github.com/lv-asc/vangarments-app-sub017/internal/adapter"
	"github.com/lv-asc/vangarments-app-sub017/internal/store"
)

// Stable error codes published in [models.SyncState].LastError and recorded
// per-record in sync_error. The interface layer renders these; they never
// change between releases.
const (
	CodeNetworkUnreachable = "network_unreachable"
	CodeRemoteRejected     = "remote_rejected"
	CodeStorageUnavailable = "storage_unavailable"
	CodeUnauthorized       = "unauthorized"
)

// ErrNotFound is returned by engine operations that reference an unknown item
// id. It matches store.ErrNotFound via errors.Is, so both layers can be
// checked interchangeably.
var ErrNotFound = store.ErrNotFound

// ErrValidation is returned for bad caller input (unknown condition value,
// negative wear count, empty name).
var ErrValidation = errors.New("invalid item fields")

// errorCode maps an error to its published code.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, adapter.ErrNetworkUnreachable):
		return CodeNetworkUnreachable
	case errors.Is(err, adapter.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, adapter.ErrRemoteRejected):
		return CodeRemoteRejected
	case errors.Is(err, store.ErrStorageUnavailable):
		return CodeStorageUnavailable
	default:
		return CodeNetworkUnreachable
	}
}

// retryable reports whether err belongs to the failure class that should put
// the coordinator into backoff rather than park a record.
func retryable(err error) bool {
	return errors.Is(err, adapter.ErrNetworkUnreachable)
}
