package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
)

func newTestMetaRepo(t *testing.T) MetaRepository {
	t.Helper()
	return NewMetaRepository(newTestDB(t), logger.Nop())
}

func TestMetaRepository_Watermark_DefaultsToZero(t *testing.T) {
	repo := newTestMetaRepo(t)

	w, err := repo.Watermark(context.Background())
	require.NoError(t, err)
	assert.Zero(t, w)
}

func TestMetaRepository_Watermark_RoundTrip(t *testing.T) {
	repo := newTestMetaRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetWatermark(ctx, 42))
	w, err := repo.Watermark(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), w)

	require.NoError(t, repo.SetWatermark(ctx, 43))
	w, err = repo.Watermark(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), w)
}

func TestMetaRepository_LastSyncTime_DefaultsToNil(t *testing.T) {
	repo := newTestMetaRepo(t)

	last, err := repo.LastSyncTime(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestMetaRepository_LastSyncTime_RoundTrip(t *testing.T) {
	repo := newTestMetaRepo(t)
	ctx := context.Background()

	stamp := time.Date(2026, 8, 29, 17, 4, 5, 123456789, time.UTC)
	require.NoError(t, repo.SetLastSyncTime(ctx, stamp))

	last, err := repo.LastSyncTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(stamp))
}

func TestMetaRepository_NextTimestamp_StrictlyIncreasing(t *testing.T) {
	repo := newTestMetaRepo(t)
	ctx := context.Background()

	prev, err := repo.NextTimestamp(ctx)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		next, err := repo.NextTimestamp(ctx)
		require.NoError(t, err)
		assert.Greater(t, next, prev)
		prev = next
	}
}

// The clock must keep moving forward even when the wall clock reads earlier
// than the last persisted value, e.g. after an NTP step backwards.
func TestMetaRepository_NextTimestamp_SurvivesClockStepBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewMetaRepository(db, logger.Nop())
	ctx := context.Background()

	// Seed the clock far beyond any realistic wall time.
	_, err := db.ExecContext(ctx, setMetaValue, metaKeyLogicalClock, "9223372036854775000")
	require.NoError(t, err)

	next, err := repo.NextTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775001), next)
}

func TestMetaRepository_NextTimestamp_PersistedAcrossInstances(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := NewMetaRepository(db, logger.Nop())
	a, err := first.NextTimestamp(ctx)
	require.NoError(t, err)

	// A fresh repository over the same database simulates a process restart.
	second := NewMetaRepository(db, logger.Nop())
	b, err := second.NextTimestamp(ctx)
	require.NoError(t, err)

	assert.Greater(t, b, a)
}

func TestMetaRepository_NextTimestamp_ConcurrentCallsUnique(t *testing.T) {
	repo := newTestMetaRepo(t)
	ctx := context.Background()

	const n = 30
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts, err := repo.NextTimestamp(ctx)
			assert.NoError(t, err)
			results <- ts
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]struct{}, n)
	for ts := range results {
		_, dup := seen[ts]
		assert.False(t, dup, "timestamp %d drawn twice", ts)
		seen[ts] = struct{}{}
	}
	assert.Len(t, seen, n)
}
