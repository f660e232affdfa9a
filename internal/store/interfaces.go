package store

import (
	"context"
	"time"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ItemRepository is the durable, keyed store for wardrobe item records.
// All operations are atomic per record.
type ItemRepository interface {
	// Save upserts the full record, keyed by its client id.
	Save(ctx context.Context, item models.ItemRecord) error

	// Get returns the record for id, including tombstones.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (models.ItemRecord, error)

	// List returns live records (tombstones excluded) matching filter, in
	// insertion order.
	List(ctx context.Context, filter models.ItemFilter) ([]models.ItemRecord, error)

	// PendingItems returns records with needs_sync set and no recorded
	// permanent error, oldest last_modified first. This is the change
	// tracker's pending set: derived purely from stored rows, so it survives
	// a crash between any two writes.
	PendingItems(ctx context.Context) ([]models.ItemRecord, error)

	// PendingCount returns how many records currently need a sync, including
	// ones parked with a permanent error.
	PendingCount(ctx context.Context) (int, error)

	// MarkSynced clears the needs_sync flag and sync error for id and records
	// the server-assigned remote id (ignored when empty). The clear only
	// applies while the record still carries lastModified; a record edited
	// since that version stays pending and no error is returned.
	MarkSynced(ctx context.Context, id, remoteID string, lastModified int64) error

	// SetSyncError parks the record with a permanent failure code. The record
	// stays pending but is excluded from automatic retry until the next
	// local edit clears the code.
	SetSyncError(ctx context.Context, id, code string) error

	// SetImageURL records the remote image URL after a successful upload. The
	// local blob flag is left as is, so the cached bytes stay usable.
	SetImageURL(ctx context.Context, id, url string) error

	// ApplyRemote overwrites the record with a server-side version and clears
	// needs_sync; used for conflict adoption and pull merges. An existing row
	// is only overwritten while it still carries seenModified, so a record
	// edited since the caller read it keeps the local version.
	ApplyRemote(ctx context.Context, item models.ItemRecord, seenModified int64) error

	// Purge removes a record row entirely. Tombstones drop unconditionally
	// (their dirtiness is the pending delete itself); a live record is
	// refused with ErrPurgePending while needs_sync is set.
	Purge(ctx context.Context, id string) error
}

// BlobRepository stores the binary image data owned by item records, keyed by
// the same client id.
type BlobRepository interface {
	PutBlob(ctx context.Context, id string, data []byte) error
	// GetBlob returns ErrBlobNotFound when no bytes are cached for id.
	GetBlob(ctx context.Context, id string) ([]byte, error)
	DeleteBlob(ctx context.Context, id string) error
}

// MetaRepository holds the engine's scalar sync state: the pull watermark,
// the last successful sync time and the device-local logical clock.
type MetaRepository interface {
	Watermark(ctx context.Context) (int64, error)
	SetWatermark(ctx context.Context, w int64) error

	LastSyncTime(ctx context.Context) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, t time.Time) error

	// NextTimestamp returns the next logical timestamp. Values are strictly
	// increasing across calls and process restarts, even if the wall clock
	// steps backwards.
	NextTimestamp(ctx context.Context) (int64, error)
}
