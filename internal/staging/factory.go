package staging

import (
	"fmt"

	"legalgist/internal/chat"
	"legalgist/internal/config"
)

// DefaultMaxSize is the default maximum staging area size (64MB).
const DefaultMaxSize int64 = 64 * 1024 * 1024

// NewAreaFromConfig creates an Area based on the staging config type.
func NewAreaFromConfig(cfg config.StagingConfig, idgen chat.IDGenerator) (*Area, error) {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	switch cfg.Type {
	case "memory", "":
		return NewMemoryArea(maxSize, idgen), nil
	case "filesystem":
		if cfg.StagingDir == "" {
			return nil, fmt.Errorf("filesystem staging area requires staging_dir to be set")
		}
		return NewFileSystemArea(cfg.StagingDir, maxSize, idgen)
	default:
		return nil, fmt.Errorf("unknown staging area type: %s", cfg.Type)
	}
}
