package metastore

import (
	"context"

	"github.com/staticbay/assetpipe/common/cache"
)

// Memory is a metadata store backed by the in-process cache. Entries never
// expire; they live for the process lifetime.
type Memory struct {
	cache     cache.Cache
	namespace string
}

// NewMemory creates a metadata store over an in-process cache
func NewMemory(c cache.Cache, namespace string) *Memory {
	return &Memory{
		cache:     c,
		namespace: namespace,
	}
}

// Get retrieves a metadata entry
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return m.cache.Get(ctx, m.namespace+":"+key)
}

// Set stores a metadata entry without expiry
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	return m.cache.Set(ctx, m.namespace+":"+key, value, 0)
}
