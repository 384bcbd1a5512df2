package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"legalgist/internal/chat"
)

// FileSystemStore keeps one file per key in a directory:
//
//	<root>/
//	  <hex(key)>   (raw value bytes)
//
// Keys are hex-encoded so any key maps to a safe file name. Writes go to a
// temp file in the same directory and are renamed into place.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a FileSystemStore rooted at root, creating the directory if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) path(key string) string {
	return filepath.Join(s.root, hex.EncodeToString([]byte(key)))
}

func (s *FileSystemStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, true, nil
}

func (s *FileSystemStore) Set(key string, value []byte) error {
	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(value); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileSystemStore) Close() error {
	return nil
}

var _ chat.KeyValueStore = (*FileSystemStore)(nil)
