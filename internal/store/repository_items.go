package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

type itemRepository struct {
	*DB
	logger *logger.Logger
}

// NewItemRepository returns the sqlite-backed ItemRepository.
func NewItemRepository(db *DB, log *logger.Logger) ItemRepository {
	return &itemRepository{DB: db, logger: log}
}

func (r *itemRepository) Save(ctx context.Context, item models.ItemRecord) error {
	return r.upsert(ctx, saveItem, item)
}

func (r *itemRepository) upsert(ctx context.Context, query string, item models.ItemRecord, extraArgs ...any) error {
	item.NormalizeTags()
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("encode tags for %s: %w", item.ID, err)
	}

	args := []any{
		item.ID,
		item.RemoteID,
		item.Name,
		item.Category,
		item.Brand,
		item.Color,
		item.Size,
		string(item.Condition),
		string(tags),
		item.IsFavorite,
		item.WearCount,
		item.LastWorn,
		item.Image.LocalBlob,
		item.Image.RemoteURL,
		item.LastModified,
		item.NeedsSync,
		item.IsDeleted,
		item.SyncError,
	}
	args = append(args, extraArgs...)

	_, err = r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("id", item.ID).
			Msg("failed to upsert item record")
		return fmt.Errorf("save item %s: %w: %w", item.ID, ErrStorageUnavailable, err)
	}

	return nil
}

func (r *itemRepository) Get(ctx context.Context, id string) (models.ItemRecord, error) {
	row := r.DB.QueryRowContext(ctx, getItem, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ItemRecord{}, fmt.Errorf("get item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to read item record")
		return models.ItemRecord{}, fmt.Errorf("get item %s: %w: %w", id, ErrStorageUnavailable, err)
	}

	return item, nil
}

// List builds the filter query dynamically: category and favorites are exact
// predicates, free text matches name or brand case-insensitively. Tombstones
// never appear. Rowid ordering preserves insertion order.
func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.ItemRecord, error) {
	builder := sq.Select(
		"id", "remote_id", "name", "category", "brand", "color", "size",
		"condition", "tags", "is_favorite", "wear_count", "last_worn",
		"has_blob", "image_url", "last_modified", "needs_sync", "is_deleted",
		"sync_error",
	).
		From("items").
		Where(sq.Eq{"is_deleted": false}).
		OrderBy("rowid ASC")

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.FavoritesOnly {
		builder = builder.Where(sq.Eq{"is_favorite": true})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"name": pattern},
			sq.Like{"brand": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	return r.queryItems(ctx, query, args...)
}

func (r *itemRepository) PendingItems(ctx context.Context) ([]models.ItemRecord, error) {
	return r.queryItems(ctx, getPendingItems)
}

func (r *itemRepository) PendingCount(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, countPendingItems).Scan(&n); err != nil {
		r.logger.Err(err).Msg("failed to count pending items")
		return 0, fmt.Errorf("count pending items: %w: %w", ErrStorageUnavailable, err)
	}
	return n, nil
}

// MarkSynced is optimistic: the update only lands while the record still
// carries the timestamp that was pushed. An edit made during the in-flight
// push moves last_modified forward, the guard misses, and the record stays
// dirty for the next cycle.
func (r *itemRepository) MarkSynced(ctx context.Context, id, remoteID string, lastModified int64) error {
	res, err := r.DB.ExecContext(ctx, markItemSynced, remoteID, id, lastModified)
	if err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to mark item synced")
		return fmt.Errorf("mark item %s synced: %w: %w", id, ErrStorageUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		r.logger.Debug().Str("id", id).Msg("record changed since push, keeping it pending")
	}
	return nil
}

func (r *itemRepository) SetSyncError(ctx context.Context, id, code string) error {
	res, err := r.DB.ExecContext(ctx, setItemSyncError, code, id)
	if err != nil {
		r.logger.Err(err).Str("id", id).Str("code", code).Msg("failed to record sync error")
		return fmt.Errorf("set sync error for %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	return requireRow(res, id)
}

func (r *itemRepository) SetImageURL(ctx context.Context, id, url string) error {
	res, err := r.DB.ExecContext(ctx, setItemImageURL, url, id)
	if err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to record image url")
		return fmt.Errorf("set image url for %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	return requireRow(res, id)
}

// ApplyRemote upserts the server version. For an existing row the write is
// guarded on the last_modified value the caller read before deciding; a
// foreground edit in between moves the timestamp, the guard misses, and the
// local version survives with its dirty flag intact. Inserts always land.
func (r *itemRepository) ApplyRemote(ctx context.Context, item models.ItemRecord, seenModified int64) error {
	item.NeedsSync = false
	item.SyncError = ""
	return r.upsert(ctx, applyRemoteItem, item, seenModified)
}

func (r *itemRepository) Purge(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, purgeItem, id)
	if err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to purge item")
		return fmt.Errorf("purge item %s: %w: %w", id, ErrStorageUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("purge item %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	if affected == 0 {
		// Either the id is unknown or a live record is still dirty; the
		// distinction matters to the coordinator.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("purge item %s: %w", id, ErrPurgePending)
	}

	return nil
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.ItemRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).Msg("failed to query item records")
		return nil, fmt.Errorf("query items: %w: %w", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var items []models.ItemRecord
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			r.logger.Err(scanErr).Msg("failed to scan item row")
			return nil, fmt.Errorf("scan item row: %w: %w", ErrStorageUnavailable, scanErr)
		}
		items = append(items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		r.logger.Err(rowsErr).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("iterate item rows: %w: %w", ErrStorageUnavailable, rowsErr)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.ItemRecord, error) {
	var item models.ItemRecord
	var condition, tags string
	var lastWorn sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.RemoteID,
		&item.Name,
		&item.Category,
		&item.Brand,
		&item.Color,
		&item.Size,
		&condition,
		&tags,
		&item.IsFavorite,
		&item.WearCount,
		&lastWorn,
		&item.Image.LocalBlob,
		&item.Image.RemoteURL,
		&item.LastModified,
		&item.NeedsSync,
		&item.IsDeleted,
		&item.SyncError,
	)
	if err != nil {
		return models.ItemRecord{}, err
	}

	item.Condition = models.Condition(condition)
	if lastWorn.Valid {
		t := lastWorn.Time
		item.LastWorn = &t
	}
	if err = json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return models.ItemRecord{}, fmt.Errorf("decode tags: %w", err)
	}

	return item, nil
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}
