package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/lv-asc/vangarments-app-sub017/internal/adapter"
	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/internal/store"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

// Coordinator runs the sync state machine: Idle -> Syncing -> Idle on
// success, Syncing -> Backoff on a retryable failure, Backoff -> Syncing when
// the delay elapses or a manual request arrives.
//
// A single goroutine owns the state and runs cycles, so at most one cycle is
// ever in flight. Requests arriving during a cycle coalesce into one queued
// rerun; they are never queued unboundedly.
type Coordinator struct {
	storages *store.Storages
	remote   adapter.RemoteClient
	reporter *Reporter
	cfg      config.Sync
	logger   *logger.Logger

	kick      chan struct{}
	manual    atomic.Bool
	reconnect atomic.Bool

	// owned by the run goroutine
	backoff      retry.Backoff
	backoffUntil time.Time
	lastError    string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator wires the coordinator. Zero config fields fall back to the
// package defaults.
func NewCoordinator(storages *store.Storages, remote adapter.RemoteClient, reporter *Reporter, cfg config.Sync, log *logger.Logger) *Coordinator {
	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultSyncInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = config.DefaultBatchConcurrency
	}
	if cfg.BackoffFloor <= 0 {
		cfg.BackoffFloor = config.DefaultBackoffFloor
	}
	if cfg.BackoffCeiling < cfg.BackoffFloor {
		cfg.BackoffCeiling = config.DefaultBackoffCeiling
	}

	return &Coordinator{
		storages: storages,
		remote:   remote,
		reporter: reporter,
		cfg:      cfg,
		logger:   log,
		kick:     make(chan struct{}, 1),
	}
}

// RequestSync asks for a sync cycle. Manual requests bypass backoff and the
// pending-set check. If a cycle is already running the request collapses into
// a single rerun after it finishes.
func (c *Coordinator) RequestSync(manual bool) {
	if manual {
		c.manual.Store(true)
	}
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Reconnected tells the coordinator connectivity is back. Any backoff delay
// in progress is abandoned so the cycle resumes on the transition instead of
// waiting out the timer.
func (c *Coordinator) Reconnected() {
	c.reconnect.Store(true)
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Start launches the coordinator loop. It stops any previously running loop
// first. The loop exits when ctx is cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	c.Stop()

	c.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.run(loopCtx)
	}()
}

// Stop cancels the loop and blocks until it has exited, including any cycle
// in flight (the cycle notices cancellation between batches). Safe to call
// when the coordinator is not running.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		var backoffC <-chan time.Time
		if !c.backoffUntil.IsZero() {
			backoffC = time.After(time.Until(c.backoffUntil))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.maybeSync(ctx, false)
		case <-c.kick:
			if c.reconnect.Swap(false) {
				// The backoff schedule keeps its place in case the link
				// flaps; only the current wait is cut short.
				c.backoffUntil = time.Time{}
			}
			c.maybeSync(ctx, c.manual.Swap(false))
		case <-backoffC:
			c.backoffUntil = time.Time{}
			c.maybeSync(ctx, false)
		}
	}
}

// maybeSync applies the transition guards and, if a cycle is due, runs it and
// folds the outcome back into the machine's state.
func (c *Coordinator) maybeSync(ctx context.Context, manual bool) {
	if !manual && !c.backoffUntil.IsZero() && time.Now().Before(c.backoffUntil) {
		// Still backing off; the timer will retry.
		return
	}

	if !manual {
		due, err := c.cycleDue(ctx)
		if err != nil {
			c.logger.Err(err).Msg("failed to evaluate sync trigger")
			c.publish(models.PhaseIdle, errorCode(err))
			return
		}
		if !due {
			return
		}
	}

	rejected, err := c.runCycle(ctx)

	switch {
	case err == nil:
		c.backoff = nil
		c.backoffUntil = time.Time{}
		c.lastError = ""
		if rejected {
			c.lastError = CodeRemoteRejected
		}
		c.publish(models.PhaseIdle, c.lastError)

	case errors.Is(err, context.Canceled):
		// Shutdown; leave state as is.

	case retryable(err):
		delay := c.nextBackoffDelay()
		c.backoffUntil = time.Now().Add(delay)
		c.lastError = errorCode(err)
		c.logger.Warn().Err(err).Dur("delay", delay).Msg("sync cycle failed, backing off")
		c.publish(models.PhaseBackoff, c.lastError)

	default:
		// Storage or programming failure: surfaced, not retried
		// automatically.
		c.lastError = errorCode(err)
		c.logger.Err(err).Msg("sync cycle failed")
		c.publish(models.PhaseIdle, c.lastError)
	}
}

// cycleDue reports whether an automatic trigger should actually start a
// cycle: there are pending local changes, or the last successful pull is
// older than the sync interval.
func (c *Coordinator) cycleDue(ctx context.Context) (bool, error) {
	pending, err := c.storages.Items.PendingCount(ctx)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return true, nil
	}

	last, err := c.storages.Meta.LastSyncTime(ctx)
	if err != nil {
		return false, err
	}
	return last == nil || time.Since(*last) >= c.cfg.Interval, nil
}

// nextBackoffDelay advances the doubling schedule: floor, 2x, 4x ... capped
// at the ceiling. The schedule resets on the next successful cycle.
func (c *Coordinator) nextBackoffDelay() time.Duration {
	if c.backoff == nil {
		c.backoff = retry.WithCappedDuration(c.cfg.BackoffCeiling, retry.NewExponential(c.cfg.BackoffFloor))
	}
	delay, _ := c.backoff.Next()
	return delay
}

// runCycle executes one full push+pull cycle. It returns whether any record
// was permanently rejected, and the first fatal error (retryable network
// failure or storage failure) that aborted the cycle.
func (c *Coordinator) runCycle(ctx context.Context) (bool, error) {
	c.publish(models.PhaseSyncing, c.lastError)

	pending, err := c.storages.Items.PendingItems(ctx)
	if err != nil {
		return false, err
	}

	var tombstones, edits []models.ItemRecord
	for _, item := range pending {
		if item.IsDeleted {
			tombstones = append(tombstones, item)
		} else {
			edits = append(edits, item)
		}
	}

	var rejected atomic.Bool
	if err = c.pushPhase(ctx, edits, &rejected); err != nil {
		return rejected.Load(), err
	}
	if err = c.deletePhase(ctx, tombstones, &rejected); err != nil {
		return rejected.Load(), err
	}

	watermark, err := c.pullPhase(ctx)
	if err != nil {
		return rejected.Load(), err
	}

	// Both phases done: advance the watermark and stamp the cycle.
	if err = c.storages.Meta.SetWatermark(ctx, watermark); err != nil {
		return rejected.Load(), err
	}
	if err = c.storages.Meta.SetLastSyncTime(ctx, time.Now()); err != nil {
		return rejected.Load(), err
	}

	return rejected.Load(), nil
}

// pushPhase drains the dirty set oldest-first in fixed-size batches with
// bounded concurrency. Each record appears in exactly one batch per cycle, so
// pushes for the same id can never reorder. Cancellation is checked between
// batch launches, never mid-batch.
func (c *Coordinator) pushPhase(ctx context.Context, edits []models.ItemRecord, rejected *atomic.Bool) error {
	if len(edits) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.BatchConcurrency)

	for start := 0; start < len(edits); start += c.cfg.BatchSize {
		if gctx.Err() != nil {
			break
		}

		end := min(start+c.cfg.BatchSize, len(edits))
		batch := edits[start:end]
		g.Go(func() error {
			return c.pushBatch(gctx, batch, rejected)
		})
	}

	return g.Wait()
}

func (c *Coordinator) pushBatch(ctx context.Context, batch []models.ItemRecord, rejected *atomic.Bool) error {
	items := make([]models.PushItem, 0, len(batch))
	byID := make(map[string]models.ItemRecord, len(batch))
	for _, record := range batch {
		byID[record.ID] = record
		items = append(items, models.PushItem{
			ClientID:     record.ID,
			RemoteID:     record.RemoteID,
			LastModified: record.LastModified,
			Payload:      payloadFromRecord(record),
		})
	}

	results, err := c.remote.PushBatch(ctx, items)
	if err != nil {
		return err
	}

	// Outcomes are independent per item: a permanent rejection parks that
	// record and the rest of the batch proceeds.
	for _, res := range results {
		record, known := byID[res.ClientID]
		if !known {
			c.logger.Warn().Str("id", res.ClientID).Msg("push result for unknown record")
			continue
		}

		switch {
		case res.Accepted:
			// Guarded on the pushed timestamp: a foreground edit made while
			// the batch was in flight keeps the record pending.
			if err = c.storages.Items.MarkSynced(ctx, res.ClientID, res.RemoteID, record.LastModified); err != nil {
				return err
			}
			if record.Image.PendingUpload() {
				if err = c.uploadImage(ctx, record, res.RemoteID, rejected); err != nil {
					return err
				}
			}

		case res.Conflict != nil:
			if err = c.applyConflict(ctx, record, *res.Conflict); err != nil {
				return err
			}

		default:
			rejected.Store(true)
			code := res.Reject
			if code == "" {
				code = CodeRemoteRejected
			}
			c.logger.Warn().Str("id", res.ClientID).Str("code", code).Msg("record rejected by server")
			if err = c.storages.Items.SetSyncError(ctx, res.ClientID, code); err != nil {
				return err
			}
		}
	}

	c.publishSnapshot(ctx, models.PhaseSyncing, c.lastError)
	return nil
}

// applyConflict resolves a push conflict with last-write-wins: the server
// returned its version because it holds a strictly newer timestamp, so the
// local copy adopts it and stops being dirty. If timestamps tie or the local
// edit is newer the local version is kept pending and wins on the next push.
// Field-level merging is deliberately not attempted.
func (c *Coordinator) applyConflict(ctx context.Context, local models.ItemRecord, server models.RemoteItem) error {
	if server.LastModified <= local.LastModified {
		return nil
	}

	c.logger.Debug().
		Str("id", local.ID).
		Int64("local_ts", local.LastModified).
		Int64("server_ts", server.LastModified).
		Msg("adopting server version after conflict")

	return c.storages.Items.ApplyRemote(ctx, recordFromRemote(server, &local), local.LastModified)
}

// uploadImage pushes the pending local blob for a record whose metadata was
// just accepted. Metadata always goes first so the server never references an
// image for a record it does not know. The blob is kept locally as a cache.
func (c *Coordinator) uploadImage(ctx context.Context, record models.ItemRecord, remoteID string, rejected *atomic.Bool) error {
	data, err := c.storages.Blobs.GetBlob(ctx, record.ID)
	if errors.Is(err, store.ErrBlobNotFound) {
		// Record says a blob is pending but the bytes are gone; nothing to
		// upload.
		c.logger.Warn().Str("id", record.ID).Msg("pending image blob missing")
		return nil
	}
	if err != nil {
		return err
	}

	url, err := c.remote.UploadImage(ctx, remoteID, data)
	if err != nil {
		if retryable(err) {
			return err
		}
		rejected.Store(true)
		c.logger.Warn().Err(err).Str("id", record.ID).Msg("image upload rejected")
		return c.storages.Items.SetSyncError(ctx, record.ID, CodeRemoteRejected)
	}

	return c.storages.Items.SetImageURL(ctx, record.ID, url)
}

// deletePhase propagates tombstones and purges them once the server confirms.
// A tombstone that never reached the server (empty remote id) is purged
// without a network call.
func (c *Coordinator) deletePhase(ctx context.Context, tombstones []models.ItemRecord, rejected *atomic.Bool) error {
	for _, record := range tombstones {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if record.RemoteID != "" {
			if err := c.remote.DeleteItem(ctx, record.RemoteID); err != nil {
				if retryable(err) {
					return err
				}
				rejected.Store(true)
				c.logger.Warn().Err(err).Str("id", record.ID).Msg("delete rejected by server")
				if err = c.storages.Items.SetSyncError(ctx, record.ID, CodeRemoteRejected); err != nil {
					return err
				}
				continue
			}
		}

		// Confirmed (or never known remotely): drop metadata and blob. The
		// purge is a single statement so a crash can never strand a
		// half-cleared tombstone.
		if err := c.storages.Items.Purge(ctx, record.ID); err != nil {
			return err
		}
		if err := c.storages.Blobs.DeleteBlob(ctx, record.ID); err != nil {
			return err
		}
	}

	return nil
}

// pullPhase merges server-side changes since the last watermark. A record
// with pending local changes (including a pending delete) is skipped: the
// local push takes precedence this cycle and reconciliation happens on the
// next push. Returns the new watermark to persist.
func (c *Coordinator) pullPhase(ctx context.Context) (int64, error) {
	since, err := c.storages.Meta.Watermark(ctx)
	if err != nil {
		return 0, err
	}

	items, watermark, err := c.remote.PullSince(ctx, since)
	if err != nil {
		return 0, err
	}

	for _, remote := range items {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		local, getErr := c.storages.Items.Get(ctx, remote.ClientID)
		switch {
		case errors.Is(getErr, store.ErrNotFound):
			if remote.Deleted {
				continue
			}
			if err = c.storages.Items.ApplyRemote(ctx, recordFromRemote(remote, nil), 0); err != nil {
				return 0, err
			}

		case getErr != nil:
			return 0, getErr

		case local.NeedsSync || local.IsDeleted:
			continue

		case remote.Deleted:
			// The record no longer exists remotely; drop it locally too.
			if err = c.storages.Items.Purge(ctx, local.ID); err != nil {
				return 0, err
			}
			if err = c.storages.Blobs.DeleteBlob(ctx, local.ID); err != nil {
				return 0, err
			}

		case remote.LastModified > local.LastModified:
			if err = c.storages.Items.ApplyRemote(ctx, recordFromRemote(remote, &local), local.LastModified); err != nil {
				return 0, err
			}
		}
	}

	return watermark, nil
}

func (c *Coordinator) publish(phase models.SyncPhase, lastError string) {
	c.publishSnapshot(context.Background(), phase, lastError)
}

// publishSnapshot pushes the current counts to subscribers. Publishing must
// never fail a cycle, so storage errors here are only logged.
func (c *Coordinator) publishSnapshot(ctx context.Context, phase models.SyncPhase, lastError string) {
	pending, err := c.storages.Items.PendingCount(ctx)
	if err != nil {
		c.logger.Err(err).Msg("failed to count pending items for progress report")
	}
	lastSync, err := c.storages.Meta.LastSyncTime(ctx)
	if err != nil {
		c.logger.Err(err).Msg("failed to read last sync time for progress report")
	}

	state := models.SyncState{
		Phase:        phase,
		PendingCount: pending,
		LastSyncTime: lastSync,
		LastError:    lastError,
	}
	if phase == models.PhaseBackoff && !c.backoffUntil.IsZero() {
		until := c.backoffUntil
		state.BackoffUntil = &until
	}

	c.reporter.Publish(state)
}

// payloadFromRecord extracts the server-visible field set.
func payloadFromRecord(record models.ItemRecord) models.ItemPayload {
	return models.ItemPayload{
		Name:       record.Name,
		Category:   record.Category,
		Brand:      record.Brand,
		Color:      record.Color,
		Size:       record.Size,
		Condition:  record.Condition,
		Tags:       record.Tags,
		IsFavorite: record.IsFavorite,
		WearCount:  record.WearCount,
		LastWorn:   record.LastWorn,
		ImageURL:   record.Image.RemoteURL,
	}
}

// recordFromRemote builds the local record for a server version. The local
// blob cache flag survives so cached bytes stay usable after the server wins
// a conflict.
func recordFromRemote(remote models.RemoteItem, local *models.ItemRecord) models.ItemRecord {
	record := models.ItemRecord{
		ID:           remote.ClientID,
		RemoteID:     remote.RemoteID,
		Name:         remote.Payload.Name,
		Category:     remote.Payload.Category,
		Brand:        remote.Payload.Brand,
		Color:        remote.Payload.Color,
		Size:         remote.Payload.Size,
		Condition:    remote.Payload.Condition,
		Tags:         remote.Payload.Tags,
		IsFavorite:   remote.Payload.IsFavorite,
		WearCount:    remote.Payload.WearCount,
		LastWorn:     remote.Payload.LastWorn,
		LastModified: remote.LastModified,
		Image: models.ImageRef{
			RemoteURL: remote.Payload.ImageURL,
		},
	}
	if local != nil {
		record.Image.LocalBlob = local.Image.LocalBlob
	}
	return record
}
