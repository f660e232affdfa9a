package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lv-asc/vangarments-app-sub017/internal/adapter"
	"github.com/lv-asc/vangarments-app-sub017/internal/store"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "network", err: fmt.Errorf("push: %w", adapter.ErrNetworkUnreachable), want: CodeNetworkUnreachable},
		{name: "unauthorized", err: adapter.ErrUnauthorized, want: CodeUnauthorized},
		{name: "rejected", err: adapter.ErrRemoteRejected, want: CodeRemoteRejected},
		{name: "storage", err: fmt.Errorf("save: %w", store.ErrStorageUnavailable), want: CodeStorageUnavailable},
		{name: "unclassified defaults to network", err: errors.New("boom"), want: CodeNetworkUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(adapter.ErrNetworkUnreachable))
	assert.True(t, retryable(fmt.Errorf("wrapped: %w", adapter.ErrNetworkUnreachable)))
	assert.False(t, retryable(adapter.ErrRemoteRejected))
	assert.False(t, retryable(adapter.ErrUnauthorized))
	assert.False(t, retryable(store.ErrStorageUnavailable))
	assert.False(t, retryable(nil))
}

func TestErrNotFound_MatchesStoreSentinel(t *testing.T) {
	err := fmt.Errorf("item x: %w", store.ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}
