package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
)

type blobRepository struct {
	*DB
	logger *logger.Logger
}

// NewBlobRepository returns the sqlite-backed BlobRepository. Blobs live in
// their own table so that listing records never pulls image bytes off disk.
func NewBlobRepository(db *DB, log *logger.Logger) BlobRepository {
	return &blobRepository{DB: db, logger: log}
}

func (r *blobRepository) PutBlob(ctx context.Context, id string, data []byte) error {
	if _, err := r.DB.ExecContext(ctx, putBlob, id, data); err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to store image blob")
		return fmt.Errorf("put blob %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	return nil
}

func (r *blobRepository) GetBlob(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.DB.QueryRowContext(ctx, getBlob, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get blob %s: %w", id, ErrBlobNotFound)
	}
	if err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to read image blob")
		return nil, fmt.Errorf("get blob %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	return data, nil
}

func (r *blobRepository) DeleteBlob(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, deleteBlob, id); err != nil {
		r.logger.Err(err).Str("id", id).Msg("failed to delete image blob")
		return fmt.Errorf("delete blob %s: %w: %w", id, ErrStorageUnavailable, err)
	}
	return nil
}
