package assetcache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/cache"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/metastore"
	"github.com/staticbay/assetpipe/common/storage"
)

// Entry is the value stored in the metadata store for a resolved asset.
type Entry struct {
	StoredName string     `json:"stored_name"`
	Meta       asset.Meta `json:"meta,omitempty"`
}

// Cache materializes assets into durable storage exactly once and maps
// their identity to the stored name. Stored names are content-addressed
// ({prefix}/{hash[:2]}/{hash[2:]}{.ext}), so an entry never needs
// invalidation: changing any input produces a new name.
type Cache struct {
	storage   storage.Storage
	meta      metastore.Store
	memo      cache.Cache
	prefix    string
	forceSave bool
	strict    bool
	log       *logger.Logger

	// per-stored-name locks for strict at-most-once materialization
	locks sync.Map
}

// Options configures a Cache.
type Options struct {
	// Prefix is the leading path segment of stored names.
	Prefix string

	// ForceSave is the default save policy for Path and URL lookups.
	// Disabled in development so source edits show up immediately.
	ForceSave bool

	// Strict adds a per-stored-name lock so concurrent first
	// materializations of the same asset run the transform once.
	// Correctness does not depend on it: content addressing makes a
	// duplicate save byte-identical and therefore harmless.
	Strict bool
}

// New creates an asset cache over the given collaborators. memo is the
// process-wide name memo; pass nil to look up the metadata store on every
// request.
func New(store storage.Storage, meta metastore.Store, memo cache.Cache, opts Options, log *logger.Logger) *Cache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "assets"
	}
	return &Cache{
		storage:   store,
		meta:      meta,
		memo:      memo,
		prefix:    prefix,
		forceSave: opts.ForceSave,
		strict:    opts.Strict,
		log:       log,
	}
}

// Storage returns the durable storage collaborator
func (c *Cache) Storage() storage.Storage {
	return c.storage
}

// ForceSaveDefault returns the configured default save policy
func (c *Cache) ForceSaveDefault() bool {
	return c.forceSave
}

// NameAndMeta resolves the stored name and save metadata of an asset,
// materializing it on first miss.
func (c *Cache) NameAndMeta(ctx context.Context, a asset.Asset) (string, asset.Meta, error) {
	cacheKey, err := asset.Identity(a)
	if err != nil {
		return "", nil, err
	}

	// Process-wide memo avoids re-querying the metadata store per request.
	if entry, ok := c.memoGet(ctx, cacheKey); ok {
		return entry.StoredName, entry.Meta, nil
	}

	if data, ok, err := c.meta.Get(ctx, cacheKey); err != nil {
		return "", nil, fmt.Errorf("failed to look up cache entry: %w", err)
	} else if ok {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			return "", nil, fmt.Errorf("failed to decode cache entry: %w", err)
		}
		c.memoSet(ctx, cacheKey, entry)
		return entry.StoredName, entry.Meta, nil
	}

	entry, err := c.materialize(ctx, a)
	if err != nil {
		return "", nil, err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.meta.Set(ctx, cacheKey, data); err != nil {
		return "", nil, fmt.Errorf("failed to record cache entry: %w", err)
	}
	c.memoSet(ctx, cacheKey, *entry)

	return entry.StoredName, entry.Meta, nil
}

// Name resolves only the stored name of an asset
func (c *Cache) Name(ctx context.Context, a asset.Asset) (string, error) {
	name, _, err := c.NameAndMeta(ctx, a)
	return name, err
}

// Meta resolves only the save metadata of an asset
func (c *Cache) Meta(ctx context.Context, a asset.Asset) (asset.Meta, error) {
	_, meta, err := c.NameAndMeta(ctx, a)
	return meta, err
}

// URL resolves the public URL of an asset under the default save policy
func (c *Cache) URL(ctx context.Context, a asset.Asset) (string, error) {
	return c.URLWithPolicy(ctx, a, c.forceSave)
}

// URLWithPolicy resolves the public URL of an asset. When forceSave is
// false and the asset can answer directly, its own URL is returned without
// touching the cache.
func (c *Cache) URLWithPolicy(ctx context.Context, a asset.Asset, forceSave bool) (string, error) {
	if !forceSave {
		if url, ok := a.URL(); ok {
			return url, nil
		}
	}
	name, _, err := c.NameAndMeta(ctx, a)
	if err != nil {
		return "", err
	}
	return c.storage.URL(name), nil
}

// Path resolves the filesystem path of an asset under the default save policy
func (c *Cache) Path(ctx context.Context, a asset.Asset) (string, error) {
	return c.PathWithPolicy(ctx, a, c.forceSave)
}

// PathWithPolicy resolves the filesystem path of an asset. When forceSave
// is false and the asset can answer directly, its own path is returned
// without touching the cache.
func (c *Cache) PathWithPolicy(ctx context.Context, a asset.Asset, forceSave bool) (string, error) {
	if !forceSave {
		if p, ok := a.Path(); ok {
			return p, nil
		}
	}
	name, _, err := c.NameAndMeta(ctx, a)
	if err != nil {
		return "", err
	}
	p, ok := c.storage.Path(name)
	if !ok {
		return "", fmt.Errorf("storage backend has no filesystem path for %s", name)
	}
	return p, nil
}

// materialize computes the stored name and saves the asset if it is not
// already present. A failed save commits nothing: the next request retries.
func (c *Cache) materialize(ctx context.Context, a asset.Asset) (*Entry, error) {
	contentHash, err := asset.ContentKey(ctx, a)
	if err != nil {
		return nil, err
	}

	storedName := c.storedName(a, contentHash)

	meta := asset.Meta{}
	if mp, ok := a.(asset.MetaProvider); ok {
		meta, err = mp.SaveMeta(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute save metadata: %w", err)
		}
	}

	if c.strict {
		unlock := c.lock(storedName)
		defer unlock()
	}

	exists, err := c.storage.Exists(ctx, storedName)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage for %s: %w", storedName, err)
	}

	if !exists {
		if err := c.save(ctx, a, storedName, meta); err != nil {
			return nil, err
		}
		c.log.Info("materialized asset",
			"asset", a.Name(),
			"stored_name", storedName)
	}

	return &Entry{StoredName: storedName, Meta: meta}, nil
}

// save materializes the asset's bytes: derived assets save themselves,
// plain assets are copied from their byte stream.
func (c *Cache) save(ctx context.Context, a asset.Asset, storedName string, meta asset.Meta) error {
	if saver, ok := a.(asset.Saver); ok {
		return saver.Save(ctx, c.storage, storedName, meta)
	}

	handle, err := a.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open asset %s: %w", a.Name(), err)
	}
	defer handle.Close()

	if err := c.storage.Save(ctx, storedName, handle); err != nil {
		return fmt.Errorf("failed to save asset %s: %w", a.Name(), err)
	}
	return nil
}

// storedName builds the two-level fan-out name for a content hash
func (c *Cache) storedName(a asset.Asset, contentHash string) string {
	ext := path.Ext(a.Name())
	if ep, ok := a.(asset.ExtensionProvider); ok {
		ext = ep.SaveExtension()
	}
	return fmt.Sprintf("%s/%s/%s%s", c.prefix, contentHash[:2], contentHash[2:], ext)
}

func (c *Cache) lock(storedName string) func() {
	muAny, _ := c.locks.LoadOrStore(storedName, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (c *Cache) memoGet(ctx context.Context, cacheKey string) (Entry, bool) {
	if c.memo == nil {
		return Entry{}, false
	}
	data, ok, err := c.memo.Get(ctx, "name:"+cacheKey)
	if err != nil || !ok {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) memoSet(ctx context.Context, cacheKey string, entry Entry) {
	if c.memo == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	// Zero TTL: the memo lives for the process lifetime.
	if err := c.memo.Set(ctx, "name:"+cacheKey, data, 0); err != nil {
		c.log.Warn("failed to memoize cache entry", "error", err)
	}
}
