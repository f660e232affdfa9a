// Package service contains the wardrobe sync engine proper: the operation
// API used by the surrounding application ([Engine]), the sync state machine
// ([Coordinator]) and the progress pub/sub channel ([Reporter]).
//
// The surrounding application writes through the Engine; every mutation lands
// in the local store immediately and is marked for synchronization. The
// Coordinator later drains the dirty set against the remote service. Sync
// failures never propagate to Engine callers; they surface only through the
// Reporter, so the device works identically offline and online.
package service

import (
	"context"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

// WardrobeService is the operation API consumed by the interface layer.
type WardrobeService interface {
	// AddItem creates a record from fields and returns its client id. The
	// record starts dirty and syncs on the next cycle.
	AddItem(ctx context.Context, fields models.ItemFields) (string, error)

	// UpdateItem applies a partial update. Returns ErrNotFound for unknown
	// or deleted ids.
	UpdateItem(ctx context.Context, id string, patch models.ItemPatch) error

	// DeleteItem tombstones a record. Idempotent: unknown and already
	// deleted ids are a no-op.
	DeleteItem(ctx context.Context, id string) error

	// ListItems returns live records matching filter in insertion order.
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemRecord, error)

	// AttachImage stores image bytes for an item and schedules their upload.
	AttachImage(ctx context.Context, id string, data []byte) error

	// GetImage returns the item's image, preferring the local cache and
	// falling back to a remote fetch (which re-populates the cache).
	GetImage(ctx context.Context, id string) ([]byte, error)

	// RecordWear increments the wear counter and stamps lastWorn.
	RecordWear(ctx context.Context, id string) error

	// ToggleFavorite flips the favorite flag.
	ToggleFavorite(ctx context.Context, id string) error

	// ForceSync triggers an immediate cycle, bypassing backoff.
	ForceSync()

	// SubscribeSyncState delivers the current sync state immediately and on
	// every change. The returned function cancels the subscription.
	SubscribeSyncState(fn StateFunc) func()

	// PendingCount reports how many records await synchronization.
	PendingCount(ctx context.Context) (int, error)
}
