package database

import (
	"fmt"
	"path/filepath"

	"pigmea-go/internal/config"
	"pigmea-go/internal/history"
)

// historyDBFile is the on-disk database name. One file per device holds
// the action log, read markers, and the local pedido snapshots.
const historyDBFile = "history.db"

// NewStoreFromConfig creates a history.Store based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig, clock history.Clock) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, historyDBFile), clock), nil
	case "memory":
		return NewSQLiteStore(":memory:", clock), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
