package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// staleSessionAge is how old another session's directory must be before it
// is removed as left behind by a process that exited without releasing.
const staleSessionAge = 24 * time.Hour

// filesystemStore keeps staged content as files:
//
//	<staging_dir>/
//	  files/
//	    <session>/      (one per Area)
//	      <ref id>      (staged attachment content)
type filesystemStore struct {
	filesDir string
}

func newFilesystemStore(stagingDir, session string) (*filesystemStore, error) {
	root := filepath.Join(stagingDir, "files")
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	if err := removeStale(root, time.Now().Add(-staleSessionAge)); err != nil {
		return nil, err
	}

	filesDir := filepath.Join(root, session)
	if err := os.MkdirAll(filesDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging session directory: %w", err)
	}
	return &filesystemStore{filesDir: filesDir}, nil
}

// removeStale deletes entries of root last modified before cutoff.
func removeStale(root string, cutoff time.Time) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to list staging directory: %w", err)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return fmt.Errorf("failed to remove stale staging entry: %w", err)
		}
	}
	return nil
}

func (s *filesystemStore) path(ref string) string {
	return filepath.Join(s.filesDir, strings.TrimPrefix(ref, refPrefix))
}

func (s *filesystemStore) Put(ref string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(s.path(ref), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return 0, fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("failed to close staged file: %w", err)
	}
	return n, nil
}

func (s *filesystemStore) Open(ref string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRefNotFound, ref)
		}
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	return f, nil
}

func (s *filesystemStore) Remove(ref string) bool {
	return os.Remove(s.path(ref)) == nil
}

func (s *filesystemStore) Size() (int64, error) {
	entries, err := os.ReadDir(s.filesDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list staged files: %w", err)
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *filesystemStore) Len() (int, error) {
	entries, err := os.ReadDir(s.filesDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list staged files: %w", err)
	}
	return len(entries), nil
}
