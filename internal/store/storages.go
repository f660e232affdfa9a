package store

import (
	"fmt"

	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
)

// Storages groups all on-device repositories into a single value that can be
// passed around the service layer.
type Storages struct {
	// Items is the sqlite-backed repository for wardrobe item records.
	Items ItemRepository
	// Blobs holds the binary image data owned by item records.
	Blobs BlobRepository
	// Meta holds the pull watermark, last sync time and logical clock.
	Meta MetaRepository

	db *DB
}

// NewStorages initialises the local storage layer: opens (or creates) the
// sqlite database at the configured path, runs schema migrations, and wires
// the repositories. Safe to call on every process start.
func NewStorages(cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Str("db_path", cfg.DBPath).Msg("opening local store")

	db, err := NewDB(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	return &Storages{
		Items: NewItemRepository(db, log),
		Blobs: NewBlobRepository(db, log),
		Meta:  NewMetaRepository(db, log),
		db:    db,
	}, nil
}

// Close releases the underlying database handle.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
