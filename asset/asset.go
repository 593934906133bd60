package asset

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/staticbay/assetpipe/common/storage"
)

// Asset is a logical source of bytes. Its name is a display name used only
// to derive a file extension; identity comes from IdentityParams. Path, URL
// and ModTime are optional capabilities reported by presence rather than by
// error.
type Asset interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
	IdentityParams() (Params, error)
	Path() (string, bool)
	URL() (string, bool)
	ModTime() (time.Time, bool)
}

// Saver is implemented by derived assets that materialize a transformed
// form instead of copying their source bytes.
type Saver interface {
	Save(ctx context.Context, store storage.Storage, name string, meta Meta) error
}

// MetaProvider is implemented by assets that attach metadata to the cache
// entry at save time, such as a thumbnail's realized display size.
type MetaProvider interface {
	SaveMeta(ctx context.Context) (Meta, error)
}

// ExtensionProvider is implemented by assets whose stored extension differs
// from their source name, such as a video still saved as a JPEG.
type ExtensionProvider interface {
	SaveExtension() string
}

// Meta is the save metadata recorded alongside a cache entry.
type Meta map[string]any

// Params is the set of identifying parameters of an asset. Serialization is
// order-independent: entries are sorted by key before hashing.
type Params map[string]string

// SetInt records an integer parameter
func (p Params) SetInt(key string, value int) {
	p[key] = strconv.Itoa(value)
}

// SetBool records a boolean parameter
func (p Params) SetBool(key string, value bool) {
	p[key] = strconv.FormatBool(value)
}

// sortedPairs returns "key=value" pairs in sorted key order
func (p Params) sortedPairs() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + p[k]
	}
	return pairs
}

// IdentityError reports an asset that cannot supply any identifying
// parameter. Such an asset cannot be cached.
type IdentityError struct {
	AssetName string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("asset %q has no identifying parameters (no path, no URL)", e.AssetName)
}

// baseParams collects the path/URL identity of an asset. Assets with
// neither cannot be distinguished from each other and fail here.
func baseParams(a Asset) (Params, error) {
	params := Params{}
	if path, ok := a.Path(); ok {
		params["path"] = path
	}
	if url, ok := a.URL(); ok {
		params["url"] = url
	}
	if len(params) == 0 {
		return nil, &IdentityError{AssetName: a.Name()}
	}
	return params, nil
}
