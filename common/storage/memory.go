package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Memory is an in-memory storage backend. It has URLs but no filesystem
// paths, which makes it behave like a remote object store: the engines that
// need a real path refuse it, and everything else buffers.
type Memory struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates an in-memory storage
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: baseURL,
		objects: make(map[string][]byte),
	}
}

// Exists reports whether an object is stored under name
func (s *Memory) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[name]
	return ok, nil
}

// Save buffers r fully before committing it, so a failed read leaves no
// partial object behind.
func (s *Memory) Save(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return nil
}

// Open returns a reader over the stored object
func (s *Memory) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Path reports that memory storage has no filesystem paths
func (s *Memory) Path(name string) (string, bool) {
	return "", false
}

// URL returns the public URL of the stored object
func (s *Memory) URL(name string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + strings.TrimPrefix(name, "/")
}
