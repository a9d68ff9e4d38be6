package storage

import (
	"context"
	"io"
	"sync"
)

// Stub keeps blobs in memory. Used by tests and by servers running without
// a configured bucket.
type Stub struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewStub() *Stub {
	return &Stub{blobs: make(map[string][]byte)}
}

func (s *Stub) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()

	return "stub://" + key, nil
}

// Get returns a stored blob; only tests need it.
func (s *Stub) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	return data, ok
}
