package storage

import (
	"context"
	"io"
)

// Storage is the durable byte store that cached assets are materialized into.
// Path support is optional: remote object stores have URLs but no local
// filesystem path, so Path reports presence instead of failing.
type Storage interface {
	// Exists reports whether an object is already stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// Save writes the full contents of r under name. Implementations must
	// not leave a partial object visible under name if the write fails.
	Save(ctx context.Context, name string, r io.Reader) error

	// Open returns a reader over the stored object.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Path returns the filesystem path of the stored object, when the
	// backend has one.
	Path(name string) (string, bool)

	// URL returns the public URL of the stored object.
	URL(name string) string
}
