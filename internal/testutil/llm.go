package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"legalgist/internal/llm"
)

// StubGenerator records requests and replies with a fixed text or error.
type StubGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []*llm.Request
	keys     []string
}

// NewStubGenerator returns a generator that always replies with reply.
func NewStubGenerator(reply string) *StubGenerator {
	return &StubGenerator{reply: reply}
}

// NewFailingGenerator returns a generator that always fails with err.
func NewFailingGenerator(err error) *StubGenerator {
	return &StubGenerator{err: err}
}

func (g *StubGenerator) Generate(ctx context.Context, apiKey string, req *llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	g.keys = append(g.keys, apiKey)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// Requests returns the requests received so far.
func (g *StubGenerator) Requests() []*llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*llm.Request(nil), g.requests...)
}

// Keys returns the API keys received so far.
func (g *StubGenerator) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.keys...)
}

// StubBlobSource serves content for a fixed set of references.
type StubBlobSource struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewStubBlobSource() *StubBlobSource {
	return &StubBlobSource{blobs: make(map[string][]byte)}
}

// Add makes ref resolvable to data.
func (s *StubBlobSource) Add(ref string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = data
}

// Revoke makes ref unresolvable.
func (s *StubBlobSource) Revoke(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
}

func (s *StubBlobSource) Open(ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("unknown reference %s", ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
