package asset

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// StaticAsset is a file from the static-asset namespace, resolved to a
// concrete filesystem path and a public URL by the catalog.
type StaticAsset struct {
	name string
	path string
	url  string
}

// NewStatic creates a static asset. name is the catalog-relative name,
// path the resolved filesystem location, url the public address.
func NewStatic(name, path, url string) *StaticAsset {
	return &StaticAsset{
		name: name,
		path: path,
		url:  url,
	}
}

// Name returns the catalog-relative name
func (a *StaticAsset) Name() string {
	return a.name
}

// Open returns a reader over the file contents
func (a *StaticAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open static asset %s: %w", a.name, err)
	}
	return f, nil
}

// IdentityParams identifies the asset by its resolved path and URL
func (a *StaticAsset) IdentityParams() (Params, error) {
	return baseParams(a)
}

// Path returns the resolved filesystem path
func (a *StaticAsset) Path() (string, bool) {
	return a.path, a.path != ""
}

// URL returns the public URL
func (a *StaticAsset) URL() (string, bool) {
	return a.url, a.url != ""
}

// ModTime returns the file modification time
func (a *StaticAsset) ModTime() (time.Time, bool) {
	info, err := os.Stat(a.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
