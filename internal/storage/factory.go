package storage

import (
	"context"
	"fmt"

	"legalgist/internal/chat"
	"legalgist/internal/config"
)

// NewStoreFromConfig creates a KeyValueStore based on the storage config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (chat.KeyValueStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Path == "" {
			return nil, fmt.Errorf("filesystem storage requires path to be set")
		}
		return NewFileSystemStore(cfg.Path)
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires path to be set")
		}
		return NewSQLiteStore(cfg.Path)
	case "badger":
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger storage requires path to be set")
		}
		return NewBadgerStore(cfg.Path)
	case "bolt":
		if cfg.Path == "" {
			return nil, fmt.Errorf("bolt storage requires path to be set")
		}
		return NewBoltStore(cfg.Path)
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
