package thumbnail

import (
	"context"
	"sync"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/common/logger"
)

// Engine produces cached thumbnails of raster images.
type Engine struct {
	cache  *assetcache.Cache
	static asset.StaticResolver
	log    *logger.Logger
}

// NewEngine creates a thumbnail engine over an asset cache. static resolves
// string inputs into static assets and may be nil if callers always pass
// Asset values.
func NewEngine(cache *assetcache.Cache, static asset.StaticResolver, log *logger.Logger) *Engine {
	return &Engine{
		cache:  cache,
		static: static,
		log:    log,
	}
}

// Thumbnail returns a lazily materialized thumbnail of the given source.
// source may be an Asset, an *os.File or a static name string. Either
// dimension may be zero, meaning "derive from the source". An unknown
// method name is a ConfigurationError.
func (e *Engine) Thumbnail(source any, width, height int, methodName string) (*Thumbnail, error) {
	method, err := LookupMethod(methodName)
	if err != nil {
		return nil, err
	}

	base, err := asset.Adapt(source, e.static)
	if err != nil {
		return nil, err
	}

	return &Thumbnail{
		cache: e.cache,
		asset: NewAsset(base, width, height, method),
	}, nil
}

// Thumbnail is a generated thumbnail. Resolution through the asset cache
// happens on first access and is memoized per instance.
type Thumbnail struct {
	cache *assetcache.Cache
	asset *ThumbnailAsset

	once       sync.Once
	storedName string
	meta       asset.Meta
	err        error
}

// Name returns the source asset's logical name
func (t *Thumbnail) Name() string {
	return t.asset.Name()
}

// Size returns the realized display dimensions
func (t *Thumbnail) Size(ctx context.Context) (int, int, error) {
	_, meta, err := t.resolve(ctx)
	if err != nil {
		return 0, 0, err
	}
	return metaInt(meta, "width"), metaInt(meta, "height"), nil
}

// URL returns the cached URL of the thumbnail
func (t *Thumbnail) URL(ctx context.Context) (string, error) {
	name, _, err := t.resolve(ctx)
	if err != nil {
		return "", err
	}
	return t.cache.Storage().URL(name), nil
}

// Path returns the cached filesystem path of the thumbnail
func (t *Thumbnail) Path(ctx context.Context) (string, error) {
	name, _, err := t.resolve(ctx)
	if err != nil {
		return "", err
	}
	p, ok := t.cache.Storage().Path(name)
	if !ok {
		return "", &ThumbnailError{Message: "storage backend has no filesystem paths"}
	}
	return p, nil
}

func (t *Thumbnail) resolve(ctx context.Context) (string, asset.Meta, error) {
	t.once.Do(func() {
		t.storedName, t.meta, t.err = t.cache.NameAndMeta(ctx, t.asset)
	})
	return t.storedName, t.meta, t.err
}

// metaInt reads an integer out of save metadata, tolerating the float64
// that JSON round-tripping produces.
func metaInt(meta asset.Meta, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
