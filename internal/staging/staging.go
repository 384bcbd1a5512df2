// Package staging holds attachment content between ingestion and encoding.
// Staged content is addressed by a transient reference that is valid until
// released.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"legalgist/internal/chat"
)

const refPrefix = "blob:"

var (
	// ErrRefNotFound is returned for references that were never issued or were released.
	ErrRefNotFound = errors.New("reference not found")
	// ErrStagingFull is returned when staging a file would exceed the area's max size.
	ErrStagingFull = errors.New("staging area full")
)

// Area hands out transient references to staged attachment content.
// It is safe for concurrent use.
type Area struct {
	store   stagingStore
	maxSize int64
	idgen   chat.IDGenerator
	mu      sync.Mutex
}

var _ chat.BlobSource = (*Area)(nil)

// NewMemoryArea creates an Area keeping content in memory.
func NewMemoryArea(maxSize int64, idgen chat.IDGenerator) *Area {
	return &Area{store: newMemoryStore(), maxSize: maxSize, idgen: idgen}
}

// NewFileSystemArea creates an Area keeping content under stagingDir.
// Each Area stages into its own session directory, so content left behind by
// an earlier process never counts toward maxSize.
func NewFileSystemArea(stagingDir string, maxSize int64, idgen chat.IDGenerator) (*Area, error) {
	store, err := newFilesystemStore(stagingDir, idgen.New())
	if err != nil {
		return nil, err
	}
	return &Area{store: store, maxSize: maxSize, idgen: idgen}, nil
}

// Stage applies the ingestion policy to the file at path and copies its
// content into the area. The media type is detected from the content, not the
// file name. The returned attachment carries a fresh reference and no payload.
func (a *Area) Stage(path string) (*chat.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting type of %s: %w", path, err)
	}
	mimeType := mt.String()
	if mt.Is(chat.MimeTypePDF) {
		mimeType = chat.MimeTypePDF
	}

	if err := chat.ValidateAttachment(mimeType, info.Size()); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ref := refPrefix + a.idgen.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	// The file may have grown since it was checked.
	size, err := a.store.Put(ref, io.LimitReader(f, chat.MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("storing content: %w", err)
	}
	if err := chat.ValidateAttachment(mimeType, size); err != nil {
		a.store.Remove(ref)
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	total, err := a.store.Size()
	if err != nil {
		a.store.Remove(ref)
		return nil, fmt.Errorf("getting current size: %w", err)
	}
	if total > a.maxSize {
		a.store.Remove(ref)
		return nil, fmt.Errorf("%w: would exceed max size of %d bytes", ErrStagingFull, a.maxSize)
	}

	return &chat.Attachment{
		ID:       a.idgen.New(),
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     size,
		Ref:      ref,
	}, nil
}

// Open returns the staged content for ref.
func (a *Area) Open(ref string) (io.ReadCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Open(ref)
}

// Release discards the content for ref. Released references can no longer be opened.
func (a *Area) Release(ref string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.store.Remove(ref) {
		return fmt.Errorf("%w: %s", ErrRefNotFound, ref)
	}
	return nil
}

// Count returns the number of live references.
func (a *Area) Count() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Len()
}

// Size returns the total size of staged content in bytes.
func (a *Area) Size() (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Size()
}
