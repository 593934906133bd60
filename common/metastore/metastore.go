package metastore

import "context"

// Store is the metadata key-value collaborator that maps cache keys to
// stored names and save metadata. No transactional guarantees are required:
// entries are content-addressed, so a lost write only costs a recomputation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
