package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lv-asc/vangarments-app-sub017/internal/adapter"
	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/internal/netmon"
	"github.com/lv-asc/vangarments-app-sub017/internal/store"
	"github.com/lv-asc/vangarments-app-sub017/internal/workers"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

// Engine implements [WardrobeService] over the local store and wires the
// background machinery (coordinator, network monitor, reporter) together.
type Engine struct {
	storages *store.Storages
	remote   adapter.RemoteClient
	reporter *Reporter
	coord    *Coordinator
	monitor  *netmon.Monitor
	logger   *logger.Logger

	workers           *workers.Workers
	unsubscribeNetmon func()
}

var _ WardrobeService = (*Engine)(nil)

// NewEngine wires an Engine from pre-built components. Use [BuildEngine] for
// config-driven construction.
func NewEngine(storages *store.Storages, remote adapter.RemoteClient, coord *Coordinator, reporter *Reporter, monitor *netmon.Monitor, log *logger.Logger) *Engine {
	return &Engine{
		storages: storages,
		remote:   remote,
		reporter: reporter,
		coord:    coord,
		monitor:  monitor,
		logger:   log,
	}
}

// BuildEngine constructs the full engine stack from configuration: local
// store, remote client, reporter, coordinator and connectivity monitor.
func BuildEngine(cfg *config.StructuredConfig, log *logger.Logger) (*Engine, error) {
	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("build engine storage: %w", err)
	}

	remote := adapter.NewHTTPRemoteClient(cfg.Adapter, log.GetChildLogger())
	reporter := NewReporter()
	coord := NewCoordinator(storages, remote, reporter, cfg.Sync, log.GetChildLogger())

	prober := netmon.ProberFunc(func(ctx context.Context) bool {
		return remote.Ping(ctx) == nil
	})
	monitor := netmon.New(cfg.Netmon, prober, log.GetChildLogger())

	return NewEngine(storages, remote, coord, reporter, monitor, log), nil
}

// Start launches the background sync loop and connectivity monitor. The
// engine is fully usable before Start; it just never syncs.
func (e *Engine) Start(ctx context.Context) {
	e.workers = workers.New(e.coord, e.monitor)
	e.workers.Start(ctx)
	e.unsubscribeNetmon = e.monitor.OnTransition(func(online bool) {
		if online {
			e.logger.Info().Msg("connectivity restored, requesting sync")
			e.coord.Reconnected()
		}
	})
}

// Close stops the background machinery and releases the store. Safe to call
// without a prior Start.
func (e *Engine) Close() error {
	if e.unsubscribeNetmon != nil {
		e.unsubscribeNetmon()
	}
	if e.workers != nil {
		e.workers.Stop()
	}
	e.reporter.Close()
	return e.storages.Close()
}

func (e *Engine) AddItem(ctx context.Context, fields models.ItemFields) (string, error) {
	condition, err := models.ParseCondition(string(fields.Condition))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if fields.Name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}

	ts, err := e.storages.Meta.NextTimestamp(ctx)
	if err != nil {
		return "", err
	}

	record := models.ItemRecord{
		ID:           uuid.NewString(),
		Name:         fields.Name,
		Category:     fields.Category,
		Brand:        fields.Brand,
		Color:        fields.Color,
		Size:         fields.Size,
		Condition:    condition,
		Tags:         fields.Tags,
		IsFavorite:   fields.IsFavorite,
		LastModified: ts,
		NeedsSync:    true,
	}

	if err = e.storages.Items.Save(ctx, record); err != nil {
		return "", err
	}

	e.logger.Debug().Str("id", record.ID).Msg("item added")
	return record.ID, nil
}

func (e *Engine) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) error {
	return e.mutate(ctx, id, func(record *models.ItemRecord) error {
		if patch.Name != nil {
			if *patch.Name == "" {
				return fmt.Errorf("%w: name is required", ErrValidation)
			}
			record.Name = *patch.Name
		}
		if patch.Category != nil {
			record.Category = *patch.Category
		}
		if patch.Brand != nil {
			record.Brand = *patch.Brand
		}
		if patch.Color != nil {
			record.Color = *patch.Color
		}
		if patch.Size != nil {
			record.Size = *patch.Size
		}
		if patch.Condition != nil {
			condition, err := models.ParseCondition(string(*patch.Condition))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			record.Condition = condition
		}
		if patch.Tags != nil {
			record.Tags = *patch.Tags
		}
		if patch.IsFavorite != nil {
			record.IsFavorite = *patch.IsFavorite
		}
		if patch.WearCount != nil {
			if *patch.WearCount < 0 {
				return fmt.Errorf("%w: wear count must not be negative", ErrValidation)
			}
			record.WearCount = *patch.WearCount
		}
		if patch.LastWorn != nil {
			record.LastWorn = patch.LastWorn
		}
		return nil
	})
}

func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	record, err := e.storages.Items.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if record.IsDeleted {
		return nil
	}

	ts, err := e.storages.Meta.NextTimestamp(ctx)
	if err != nil {
		return err
	}

	// Tombstone, not a row delete: the record stays until the server
	// confirms, so an offline delete survives restarts and still propagates.
	record.IsDeleted = true
	record.NeedsSync = true
	record.SyncError = ""
	record.LastModified = ts

	if err = e.storages.Items.Save(ctx, record); err != nil {
		return err
	}

	e.logger.Debug().Str("id", id).Msg("item tombstoned")
	return nil
}

func (e *Engine) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemRecord, error) {
	return e.storages.Items.List(ctx, filter)
}

func (e *Engine) AttachImage(ctx context.Context, id string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: image data is empty", ErrValidation)
	}

	// The record must exist before the blob row does, or a bad id would
	// leave orphaned bytes in the image table.
	record, err := e.storages.Items.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.IsDeleted {
		return fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}

	if err = e.storages.Blobs.PutBlob(ctx, id, data); err != nil {
		return err
	}

	return e.mutate(ctx, id, func(record *models.ItemRecord) error {
		// A new image supersedes any previously uploaded one; clearing the
		// URL marks the blob as pending upload.
		record.Image.LocalBlob = true
		record.Image.RemoteURL = ""
		return nil
	})
}

func (e *Engine) GetImage(ctx context.Context, id string) ([]byte, error) {
	record, err := e.storages.Items.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := e.storages.Blobs.GetBlob(ctx, id)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, store.ErrBlobNotFound) {
		return nil, err
	}

	if record.Image.RemoteURL == "" {
		return nil, fmt.Errorf("image for item %s: %w", id, store.ErrBlobNotFound)
	}

	data, err = e.remote.FetchImage(ctx, record.Image.RemoteURL)
	if err != nil {
		return nil, err
	}

	// Re-populate the cache; a failure here only costs the next fetch.
	if cacheErr := e.storages.Blobs.PutBlob(ctx, id, data); cacheErr != nil {
		e.logger.Warn().Err(cacheErr).Str("id", id).Msg("failed to cache fetched image")
	}

	return data, nil
}

func (e *Engine) RecordWear(ctx context.Context, id string) error {
	now := time.Now()
	return e.mutate(ctx, id, func(record *models.ItemRecord) error {
		record.WearCount++
		record.LastWorn = &now
		return nil
	})
}

func (e *Engine) ToggleFavorite(ctx context.Context, id string) error {
	return e.mutate(ctx, id, func(record *models.ItemRecord) error {
		record.IsFavorite = !record.IsFavorite
		return nil
	})
}

func (e *Engine) ForceSync() {
	e.coord.RequestSync(true)
}

func (e *Engine) SubscribeSyncState(fn StateFunc) func() {
	return e.reporter.Subscribe(fn)
}

func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.storages.Items.PendingCount(ctx)
}

// mutate loads a live record, applies fn, and persists it as a new dirty
// version: fresh logical timestamp, needs_sync set, any parked sync error
// cleared (an edit re-admits the record to automatic retry).
func (e *Engine) mutate(ctx context.Context, id string, fn func(*models.ItemRecord) error) error {
	record, err := e.storages.Items.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.IsDeleted {
		return fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}

	if err = fn(&record); err != nil {
		return err
	}

	ts, err := e.storages.Meta.NextTimestamp(ctx)
	if err != nil {
		return err
	}
	record.LastModified = ts
	record.NeedsSync = true
	record.SyncError = ""

	return e.storages.Items.Save(ctx, record)
}
