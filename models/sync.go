package models

import "time"

// SyncPhase is the externally visible state of the sync coordinator.
type SyncPhase string

const (
	PhaseIdle    SyncPhase = "idle"
	PhaseSyncing SyncPhase = "syncing"
	PhaseBackoff SyncPhase = "backoff"
)

// SyncState is the snapshot delivered to progress subscribers. It is published
// on every phase change and whenever pending counts move during a cycle.
type SyncState struct {
	Phase        SyncPhase  `json:"phase"`
	PendingCount int        `json:"pending_count"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	// LastError is the stable code of the last sync-level failure
	// ("network_unreachable", "remote_rejected", ...), empty after a
	// successful cycle.
	LastError string `json:"last_error,omitempty"`
	// BackoffUntil is set while Phase == PhaseBackoff.
	BackoffUntil *time.Time `json:"backoff_until,omitempty"`
}

// ItemPayload is the field set exchanged with the server for one item. It is
// the subset of ItemRecord the server stores; sync bookkeeping never crosses
// the wire.
type ItemPayload struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Brand      string     `json:"brand,omitempty"`
	Color      string     `json:"color"`
	Size       string     `json:"size"`
	Condition  Condition  `json:"condition"`
	Tags       []string   `json:"tags,omitempty"`
	IsFavorite bool       `json:"is_favorite"`
	WearCount  int        `json:"wear_count"`
	LastWorn   *time.Time `json:"last_worn,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
}

// PushItem is one element of a batch push request.
type PushItem struct {
	ClientID     string      `json:"client_id"`
	RemoteID     string      `json:"remote_id,omitempty"`
	LastModified int64       `json:"last_modified"`
	Payload      ItemPayload `json:"payload"`
}

// PushRequest is the body of POST /items/batch.
type PushRequest struct {
	Items  []PushItem `json:"items"`
	Length int        `json:"length"`
}

// PushResult is the per-item outcome of a batch push.
//
// Accepted means the server took the client's version; RemoteID is always
// populated (newly assigned on first push). When Accepted is false and
// Conflict is non-nil the server held a strictly newer version and returned
// it; the client is expected to adopt those fields. When Accepted is false
// with a non-empty Reject the item failed validation permanently.
type PushResult struct {
	ClientID string      `json:"client_id"`
	RemoteID string      `json:"remote_id,omitempty"`
	Accepted bool        `json:"accepted"`
	Conflict *RemoteItem `json:"conflict,omitempty"`
	Reject   string      `json:"reject,omitempty"`
}

// PushResponse is the body returned by POST /items/batch.
type PushResponse struct {
	Results []PushResult `json:"results"`
}

// RemoteItem is a server-side item version, returned by the pull endpoint and
// inside conflict responses.
type RemoteItem struct {
	ClientID     string      `json:"client_id"`
	RemoteID     string      `json:"remote_id"`
	LastModified int64       `json:"last_modified"`
	Deleted      bool        `json:"deleted,omitempty"`
	Payload      ItemPayload `json:"payload"`
}

// PullResponse is the body returned by GET /items?modified_since=<watermark>.
type PullResponse struct {
	Items     []RemoteItem `json:"items"`
	Watermark int64        `json:"watermark"`
}

// ImageUploadResponse is the body returned by POST /items/{remoteID}/image.
type ImageUploadResponse struct {
	URL string `json:"url"`
}
