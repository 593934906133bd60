package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/logger"
)

// Catalog resolves human-friendly group identifiers into ordered lists of
// static assets. The directory listing is scanned once and lives for the
// process lifetime; external file changes after Init are only picked up by
// an explicit Refresh. That staleness is an accepted trade-off.
type Catalog struct {
	roots     []string
	urlPrefix string
	log       *logger.Logger

	mu      sync.RWMutex
	listing map[string]string // relative name -> absolute path, first root wins
	groups  map[string][]string
	inited  bool
}

// New creates a catalog over the given root directories. urlPrefix is the
// public URL prefix of the static namespace.
func New(roots []string, urlPrefix string, log *logger.Logger) *Catalog {
	return &Catalog{
		roots:     roots,
		urlPrefix: urlPrefix,
		log:       log,
		listing:   make(map[string]string),
		groups:    make(map[string][]string),
	}
}

// Init scans the root directories. Safe to call more than once; only the
// first call scans.
func (c *Catalog) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inited {
		return nil
	}
	if err := c.scanLocked(); err != nil {
		return err
	}
	c.inited = true
	return nil
}

// Refresh rescans the root directories, picking up external changes
func (c *Catalog) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listing = make(map[string]string)
	if err := c.scanLocked(); err != nil {
		return err
	}
	c.inited = true
	return nil
}

// LoadManifest reads named asset groups from a JSON manifest of the form
// {"group": ["a.js", "b.js"]}. Member order in the manifest is the group's
// declared order.
func (c *Catalog) LoadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read group manifest: %w", err)
	}

	groups := make(map[string][]string)
	if err := json.Unmarshal(data, &groups); err != nil {
		return fmt.Errorf("failed to parse group manifest: %w", err)
	}

	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()

	c.log.Info("loaded asset group manifest", "path", path, "groups", len(groups))
	return nil
}

// Static resolves a single catalog-relative name into a static asset
func (c *Catalog) Static(name string) (asset.Asset, error) {
	if err := c.Init(); err != nil {
		return nil, err
	}

	name = path.Clean(strings.TrimPrefix(name, "/"))

	c.mu.RLock()
	absPath, ok := c.listing[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("static asset not found: %s", name)
	}

	return asset.NewStatic(name, absPath, c.url(name)), nil
}

// Resolve returns the ordered assets of a group. A group named in the
// manifest resolves to its declared members; otherwise the group is treated
// as a glob pattern over the catalog listing. include and exclude are
// additional glob filters applied to candidate names.
func (c *Catalog) Resolve(group string, include, exclude []string) ([]asset.Asset, error) {
	if err := c.Init(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	members, named := c.groups[group]
	c.mu.RUnlock()

	var names []string
	if named {
		names = members
	} else {
		names = c.match(group)
	}

	assets := make([]asset.Asset, 0, len(names))
	for _, name := range names {
		if !matchAny(include, name, true) || matchAny(exclude, name, false) {
			continue
		}
		a, err := c.Static(name)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// URLPrefix returns the public URL prefix of the static namespace
func (c *Catalog) URLPrefix() string {
	return c.urlPrefix
}

func (c *Catalog) url(name string) string {
	return strings.TrimSuffix(c.urlPrefix, "/") + "/" + name
}

// match returns listing names matching a glob pattern, sorted for a
// deterministic group order.
func (c *Catalog) match(pattern string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.listing {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) scanLocked() error {
	for _, root := range c.roots {
		root := filepath.Clean(root)
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			// First root wins, matching override semantics of layered
			// static directories.
			if _, ok := c.listing[name]; !ok {
				c.listing[name] = p
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				c.log.Warn("static root missing, skipping", "root", root)
				continue
			}
			return fmt.Errorf("failed to scan static root %s: %w", root, err)
		}
	}

	c.log.Info("static catalog scanned", "roots", len(c.roots), "assets", len(c.listing))
	return nil
}

// matchAny reports whether name matches any of the patterns. empty reports
// the result for an empty pattern list.
func matchAny(patterns []string, name string, empty bool) bool {
	if len(patterns) == 0 {
		return empty
	}
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
