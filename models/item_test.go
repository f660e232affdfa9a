package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition_Valid(t *testing.T) {
	for _, raw := range []string{"new", "excellent", "good", "fair", "poor"} {
		got, err := ParseCondition(raw)
		require.NoError(t, err, "condition %q", raw)
		assert.Equal(t, Condition(raw), got)
	}
}

func TestParseCondition_EmptyDefaultsToGood(t *testing.T) {
	got, err := ParseCondition("")
	require.NoError(t, err)
	assert.Equal(t, ConditionGood, got)
}

func TestParseCondition_Unknown(t *testing.T) {
	_, err := ParseCondition("vintage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCondition)
	assert.Contains(t, err.Error(), "vintage")
}

func TestNormalizeTags_DedupAndSort(t *testing.T) {
	item := ItemRecord{Tags: []string{"wool", "summer", "wool", "", "casual"}}
	item.NormalizeTags()
	assert.Equal(t, []string{"casual", "summer", "wool"}, item.Tags)
}

func TestNormalizeTags_Empty(t *testing.T) {
	item := ItemRecord{}
	item.NormalizeTags()
	assert.Empty(t, item.Tags)
}

func TestImageRef_PendingUpload(t *testing.T) {
	assert.False(t, ImageRef{}.PendingUpload())
	assert.True(t, ImageRef{LocalBlob: true}.PendingUpload())
	assert.False(t, ImageRef{LocalBlob: true, RemoteURL: "https://cdn/x"}.PendingUpload())
	// A record that only ever pulled a remote URL has nothing to upload.
	assert.False(t, ImageRef{RemoteURL: "https://cdn/x"}.PendingUpload())
}
