// Package storage persists the mindmap collection. Backends implement a
// load-all/save-all port; the engine never sees which one it is talking to.
package storage

import (
	"context"
	"fmt"

	"mindcanvas/internal/config"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/model"
)

// Supported driver names.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store is the persistence port for the whole collection.
type Store interface {
	// LoadAll reads every mindmap. A missing backing file yields an empty
	// collection, not an error.
	LoadAll(ctx context.Context) ([]*model.Mindmap, error)
	// SaveAll replaces the persisted collection.
	SaveAll(ctx context.Context, maps []*model.Mindmap) error
	// Close releases backend resources.
	Close() error
}

// NewStore builds the backend selected by the configuration.
func NewStore(cfg config.StorageConfig, logger logging.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverFile:
		return NewFileStore(cfg.Path, cfg.Backups, logger)
	case DriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
