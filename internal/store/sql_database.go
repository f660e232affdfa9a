package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/migrations"
)

// DB wraps the sqlite connection shared by all repositories.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// NewDB opens (or creates) the local sqlite database at path, applies
// pragmas for durability under concurrent foreground/background access, and
// runs schema migrations. Initialization is idempotent: calling it on every
// process start is safe and never loses data.
func NewDB(path string, log *logger.Logger) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w: %w", ErrStorageUnavailable, err)
	}

	// A single connection sidesteps table-lock errors between the foreground
	// writers and the background sync goroutine; per-record atomicity is then
	// guaranteed by sqlite itself.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w: %w", p, ErrStorageUnavailable, err)
		}
	}

	if err := migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return &DB{DB: db, logger: log}, nil
}

// Ping verifies the underlying connection is still usable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
