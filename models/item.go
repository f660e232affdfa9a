package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Condition describes the physical state of a wardrobe item.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

var ErrInvalidCondition = errors.New("invalid item condition")

// ParseCondition validates a raw condition string. An empty string defaults to
// ConditionGood.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return Condition(s), nil
	case "":
		return ConditionGood, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
}

// ImageRef points at the image data of an item. A freshly added image has only
// LocalBlob set; after a successful upload RemoteURL is filled in and the blob
// is kept as a cache.
type ImageRef struct {
	LocalBlob bool   `json:"local_blob"`
	RemoteURL string `json:"remote_url,omitempty"`
}

// PendingUpload reports whether the image still has to be pushed to the server.
func (r ImageRef) PendingUpload() bool {
	return r.LocalBlob && r.RemoteURL == ""
}

// ItemRecord is the unit of synchronization: one wardrobe item as stored on the
// device.
//
// ID is generated on the client and never changes. RemoteID is assigned by the
// server on the first accepted push and is empty for records that have never
// been synced. LastModified is a device-local logical timestamp, strictly
// increasing across mutations of the same record.
type ItemRecord struct {
	ID       string `json:"id"`
	RemoteID string `json:"remote_id,omitempty"`

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

	Image        ImageRef `json:"image"`
	LastModified int64    `json:"last_modified"`
	NeedsSync    bool     `json:"needs_sync"`
	IsDeleted    bool     `json:"is_deleted"`

	// SyncError holds the error code of the last permanent push failure for
	// this record. Non-empty excludes the record from automatic retry until
	// the next local edit.
	SyncError string `json:"sync_error,omitempty"`
}

// NormalizeTags deduplicates and sorts the tag set in place so that two records
// with the same tags always compare equal.
func (i *ItemRecord) NormalizeTags() {
	if len(i.Tags) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(i.Tags))
	tags := i.Tags[:0]
	for _, t := range i.Tags {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	sort.Strings(tags)
	i.Tags = tags
}

// ItemFields carries the user-settable fields when creating an item.
type ItemFields struct {
	Name       string
	Category   string
	Brand      string
	Color      string
	Size       string
	Condition  Condition
	Tags       []string
	IsFavorite bool
}

// ItemPatch carries a partial update; nil fields are left untouched.
type ItemPatch struct {
	Name       *string
	Category   *string
	Brand      *string
	Color      *string
	Size       *string
	Condition  *Condition
	Tags       *[]string
	IsFavorite *bool
	WearCount  *int
	LastWorn   *time.Time
}

// ItemFilter narrows the result of a list operation. Zero value matches
// everything live (tombstones are never listed).
type ItemFilter struct {
	Category string
	// Search is matched case-insensitively as a substring of name and brand.
	Search        string
	FavoritesOnly bool
}
