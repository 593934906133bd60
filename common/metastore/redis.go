package metastore

import (
	"context"
	"fmt"

	"github.com/staticbay/assetpipe/common/redis"
)

// Redis is a metadata store backed by Redis, for deployments where several
// serving processes should share one cache-key mapping.
type Redis struct {
	client    *redis.Client
	namespace string
}

// NewRedis creates a Redis-backed metadata store
func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{
		client:    client,
		namespace: namespace,
	}
}

// Get retrieves a metadata entry
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := r.client.Get(ctx, r.redisKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

// Set stores a metadata entry with no expiry. Entries are content-addressed
// so they never need invalidation, only eviction.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), string(value), 0); err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}

func (r *Redis) redisKey(key string) string {
	return fmt.Sprintf("%s:meta:%s", r.namespace, key)
}
