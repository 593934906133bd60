package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileAsset wraps a file on disk, such as an uploaded file that has been
// written out by the upload handler.
type FileAsset struct {
	path string
}

// NewFile creates an asset from a filesystem path
func NewFile(path string) *FileAsset {
	return &FileAsset{path: path}
}

// Name returns the base name of the file
func (a *FileAsset) Name() string {
	return filepath.Base(a.path)
}

// Open returns a reader over the file contents
func (a *FileAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file asset %s: %w", a.path, err)
	}
	return f, nil
}

// IdentityParams identifies the asset by its path
func (a *FileAsset) IdentityParams() (Params, error) {
	return baseParams(a)
}

// Path returns the filesystem path
func (a *FileAsset) Path() (string, bool) {
	return a.path, true
}

// URL reports that plain files have no public URL
func (a *FileAsset) URL() (string, bool) {
	return "", false
}

// ModTime returns the file modification time
func (a *FileAsset) ModTime() (time.Time, bool) {
	info, err := os.Stat(a.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// BufferAsset holds bytes that exist only in memory. It has no path and no
// URL, so identity resolution fails for it unless a URL is attached; it
// exists mainly so adapters have somewhere to put raw byte handles.
type BufferAsset struct {
	name string
	url  string
	data []byte
}

// NewBuffer creates an in-memory asset
func NewBuffer(name string, data []byte) *BufferAsset {
	return &BufferAsset{name: name, data: data}
}

// NewBufferURL creates an in-memory asset addressable by a URL
func NewBufferURL(name, url string, data []byte) *BufferAsset {
	return &BufferAsset{name: name, url: url, data: data}
}

// Name returns the display name
func (a *BufferAsset) Name() string {
	return a.name
}

// Open returns a reader over the buffered bytes
func (a *BufferAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.data)), nil
}

// IdentityParams fails unless the buffer was given a URL
func (a *BufferAsset) IdentityParams() (Params, error) {
	return baseParams(a)
}

// Path reports that buffers have no filesystem path
func (a *BufferAsset) Path() (string, bool) {
	return "", false
}

// URL returns the attached URL, if any
func (a *BufferAsset) URL() (string, bool) {
	return a.url, a.url != ""
}

// ModTime reports that buffers carry no modification time, forcing the
// content-checksum hash path.
func (a *BufferAsset) ModTime() (time.Time, bool) {
	return time.Time{}, false
}
