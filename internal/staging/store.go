package staging

import "io"

// stagingStore holds staged content by reference.
// Concurrency is managed by the caller (Area.mu), so stores do not need to be
// safe for concurrent use.
type stagingStore interface {
	// Put stores everything read from r under ref and returns the byte count.
	Put(ref string, r io.Reader) (int64, error)

	// Open returns a reader for the content under ref, or ErrRefNotFound.
	Open(ref string) (io.ReadCloser, error)

	// Remove deletes the content under ref (best-effort).
	// Reports whether anything was removed.
	Remove(ref string) bool

	// Size returns total bytes of all stored content.
	Size() (int64, error)

	// Len returns the number of stored references.
	Len() (int, error)
}
