package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

func collectState(t *testing.T, states <-chan models.SyncState) models.SyncState {
	t.Helper()
	select {
	case s := <-states:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync state")
		return models.SyncState{}
	}
}

func TestReporter_SubscribeDeliversCurrentState(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	states := make(chan models.SyncState, 8)
	r.Subscribe(func(s models.SyncState) { states <- s })

	got := collectState(t, states)
	assert.Equal(t, models.PhaseIdle, got.Phase)
}

func TestReporter_LateSubscriberSeesLastPublished(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	r.Publish(models.SyncState{Phase: models.PhaseBackoff, PendingCount: 3, LastError: CodeNetworkUnreachable})

	states := make(chan models.SyncState, 8)
	r.Subscribe(func(s models.SyncState) { states <- s })

	got := collectState(t, states)
	assert.Equal(t, models.PhaseBackoff, got.Phase)
	assert.Equal(t, 3, got.PendingCount)
	assert.Equal(t, CodeNetworkUnreachable, got.LastError)
}

func TestReporter_DeliversInOrder(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	states := make(chan models.SyncState, 16)
	r.Subscribe(func(s models.SyncState) { states <- s })
	collectState(t, states) // initial snapshot

	for i := 1; i <= 5; i++ {
		r.Publish(models.SyncState{Phase: models.PhaseSyncing, PendingCount: i})
	}

	for i := 1; i <= 5; i++ {
		got := collectState(t, states)
		assert.Equal(t, i, got.PendingCount)
	}
}

func TestReporter_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	block := make(chan struct{})
	r.Subscribe(func(models.SyncState) { <-block })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			r.Publish(models.SyncState{Phase: models.PhaseSyncing, PendingCount: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}
	close(block)
}

func TestReporter_SubscriberIsolation(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	block := make(chan struct{})
	r.Subscribe(func(models.SyncState) { <-block })

	fast := make(chan models.SyncState, 8)
	r.Subscribe(func(s models.SyncState) { fast <- s })
	collectState(t, fast)

	r.Publish(models.SyncState{Phase: models.PhaseSyncing, PendingCount: 7})

	got := collectState(t, fast)
	assert.Equal(t, 7, got.PendingCount, "a stalled subscriber must not delay the others")
	close(block)
}

func TestReporter_UnsubscribeStopsDelivery(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	var delivered atomic.Int64
	unsubscribe := r.Subscribe(func(models.SyncState) { delivered.Add(1) })

	require.Eventually(t, func() bool { return delivered.Load() == 1 },
		time.Second, 5*time.Millisecond, "initial snapshot")

	unsubscribe()
	r.Publish(models.SyncState{Phase: models.PhaseSyncing})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int64(1), delivered.Load())
	assert.NotPanics(t, unsubscribe)
}

func TestReporter_State(t *testing.T) {
	r := NewReporter()
	defer r.Close()

	assert.Equal(t, models.PhaseIdle, r.State().Phase)

	r.Publish(models.SyncState{Phase: models.PhaseSyncing, PendingCount: 2})
	got := r.State()
	assert.Equal(t, models.PhaseSyncing, got.Phase)
	assert.Equal(t, 2, got.PendingCount)
}

func TestReporter_SubscribeAfterClose(t *testing.T) {
	r := NewReporter()
	r.Close()

	var delivered atomic.Int64
	unsubscribe := r.Subscribe(func(models.SyncState) { delivered.Add(1) })
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, delivered.Load())
	assert.NotPanics(t, unsubscribe)
}
