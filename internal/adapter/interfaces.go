// Package adapter provides the transport layer for talking to the remote
// wardrobe service.
//
// The primary abstraction is [RemoteClient], which decouples the sync
// coordinator from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteClient]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNetworkUnreachable] triggers backoff,
// [ErrRemoteRejected] parks the record).
package adapter

import (
	"context"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_client_mock.go -package=mock

// RemoteClient defines transport-agnostic communication with the remote
// wardrobe service. Implementations are responsible for serialisation, the
// bearer token header, and mapping transport-level errors to the sentinel
// values defined in this package.
type RemoteClient interface {
	// SetToken stores the opaque bearer token attached to all subsequent
	// requests.
	SetToken(token string)

	// PushBatch sends one batch of local record versions to the server and
	// returns the per-item outcomes. Creates are idempotent on the client id:
	// retrying a dropped response never produces a duplicate remote record.
	// Per-item conflicts and rejections travel inside the result slice, not
	// as an error.
	PushBatch(ctx context.Context, items []models.PushItem) ([]models.PushResult, error)

	// UploadImage uploads the binary image for an already-pushed record and
	// returns the remote URL to reference it by.
	UploadImage(ctx context.Context, remoteID string, data []byte) (string, error)

	// DeleteItem propagates a local tombstone. Idempotent: deleting an
	// unknown remote id succeeds.
	DeleteItem(ctx context.Context, remoteID string) error

	// PullSince fetches items changed on the server after the watermark and
	// the new watermark to persist once the cycle completes.
	PullSince(ctx context.Context, watermark int64) ([]models.RemoteItem, int64, error)

	// FetchImage downloads image bytes from a remote URL, used on local
	// cache misses.
	FetchImage(ctx context.Context, url string) ([]byte, error)

	// Ping probes the service. Used by the connectivity monitor; a nil error
	// means the service is reachable.
	Ping(ctx context.Context) error
}
