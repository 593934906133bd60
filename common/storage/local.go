package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/staticbay/assetpipe/common/logger"
)

// Local stores objects on the local filesystem under a root directory and
// maps them onto a public base URL.
type Local struct {
	root    string
	baseURL string
	log     *logger.Logger
}

// NewLocal creates a filesystem storage rooted at root. Stored names are
// mapped to URLs by joining them onto baseURL.
func NewLocal(root, baseURL string, log *logger.Logger) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Local{
		root:    root,
		baseURL: baseURL,
		log:     log,
	}, nil
}

// Exists reports whether an object is already stored under name
func (s *Local) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.fullPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", name, err)
}

// Save writes r to a temporary file and renames it into place, so readers
// never observe a partial object under name.
func (s *Local) Save(ctx context.Context, name string, r io.Reader) error {
	full := s.fullPath(name)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move object into place: %w", err)
	}

	s.log.Debug("stored object", "name", name, "path", full)
	return nil
}

// Open returns a reader over the stored object
func (s *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.fullPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", name, err)
	}
	return f, nil
}

// Path returns the filesystem path of the stored object
func (s *Local) Path(name string) (string, bool) {
	return s.fullPath(name), true
}

// URL returns the public URL of the stored object
func (s *Local) URL(name string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + strings.TrimPrefix(name, "/")
}

func (s *Local) fullPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+name)))
}
