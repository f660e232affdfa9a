package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
)

const (
	metaKeyWatermark    = "pull_watermark"
	metaKeyLastSync     = "last_sync_time"
	metaKeyLogicalClock = "logical_clock"
)

type metaRepository struct {
	*DB
	logger *logger.Logger

	// Serializes NextTimestamp's read-modify-write so two foreground
	// mutations can never draw the same value.
	clockMu sync.Mutex
}

// NewMetaRepository returns the sqlite-backed MetaRepository.
func NewMetaRepository(db *DB, log *logger.Logger) MetaRepository {
	return &metaRepository{DB: db, logger: log}
}

func (r *metaRepository) Watermark(ctx context.Context) (int64, error) {
	raw, err := r.getValue(ctx, metaKeyWatermark)
	if err != nil || raw == "" {
		return 0, err
	}

	w, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("parse pull watermark %q: %w", raw, parseErr)
	}
	return w, nil
}

func (r *metaRepository) SetWatermark(ctx context.Context, w int64) error {
	return r.setValue(ctx, metaKeyWatermark, strconv.FormatInt(w, 10))
}

func (r *metaRepository) LastSyncTime(ctx context.Context) (*time.Time, error) {
	raw, err := r.getValue(ctx, metaKeyLastSync)
	if err != nil || raw == "" {
		return nil, err
	}

	t, parseErr := time.Parse(time.RFC3339Nano, raw)
	if parseErr != nil {
		return nil, fmt.Errorf("parse last sync time %q: %w", raw, parseErr)
	}
	return &t, nil
}

func (r *metaRepository) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return r.setValue(ctx, metaKeyLastSync, t.UTC().Format(time.RFC3339Nano))
}

// NextTimestamp advances the device's logical clock. The clock is seeded from
// wall time in milliseconds and forced strictly increasing, so it keeps
// ordering mutations even when the wall clock steps backwards. The value is
// persisted before being handed out: a crash can skip timestamps but never
// reuse one.
func (r *metaRepository) NextTimestamp(ctx context.Context) (int64, error) {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()

	raw, err := r.getValue(ctx, metaKeyLogicalClock)
	if err != nil {
		return 0, err
	}

	var last int64
	if raw != "" {
		if last, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return 0, fmt.Errorf("parse logical clock %q: %w", raw, err)
		}
	}

	next := time.Now().UnixMilli()
	if next <= last {
		next = last + 1
	}

	if err = r.setValue(ctx, metaKeyLogicalClock, strconv.FormatInt(next, 10)); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *metaRepository) getValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.QueryRowContext(ctx, getMetaValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		r.logger.Err(err).Str("key", key).Msg("failed to read sync meta value")
		return "", fmt.Errorf("get meta %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	return value, nil
}

func (r *metaRepository) setValue(ctx context.Context, key, value string) error {
	if _, err := r.DB.ExecContext(ctx, setMetaValue, key, value); err != nil {
		r.logger.Err(err).Str("key", key).Msg("failed to write sync meta value")
		return fmt.Errorf("set meta %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	return nil
}
