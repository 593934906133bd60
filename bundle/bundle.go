package bundle

import (
	"context"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/common/config"
	"github.com/staticbay/assetpipe/common/logger"
)

// GroupResolver resolves group identifiers and static names into assets.
// The static catalog implements it.
type GroupResolver interface {
	asset.StaticResolver
	Resolve(group string, include, exclude []string) ([]asset.Asset, error)
}

// NewMinifier builds the configured minifier: local process when argv is
// set, remote service when a URL is set, nil when neither.
func NewMinifier(cfg config.ToolConfig) Minifier {
	switch {
	case len(cfg.MinifierArgs) > 0:
		return NewCommandMinifier(cfg.MinifierArgs, cfg.MinifierTimeout)
	case cfg.MinifierURL != "":
		return NewHTTPMinifier(cfg.MinifierURL, cfg.MinifierTimeout)
	default:
		return nil
	}
}

// Scripts bundles script groups through the asset cache.
type Scripts struct {
	cache        *assetcache.Cache
	resolver     GroupResolver
	minifier     Minifier
	failSilently bool
	log          *logger.Logger
}

// NewScripts creates the script bundling service
func NewScripts(cache *assetcache.Cache, resolver GroupResolver, minifier Minifier, failSilently bool, log *logger.Logger) *Scripts {
	return &Scripts{
		cache:        cache,
		resolver:     resolver,
		minifier:     minifier,
		failSilently: failSilently,
		log:          log,
	}
}

// Asset builds the bundle asset for an ordered member list
func (s *Scripts) Asset(members []asset.Asset) *ScriptAsset {
	return NewScript(members, s.minifier, s.failSilently, s.log)
}

// URLs resolves a group to script URLs under the default save policy
func (s *Scripts) URLs(ctx context.Context, group string, include, exclude []string) ([]string, error) {
	return s.URLsWithPolicy(ctx, group, include, exclude, s.cache.ForceSaveDefault())
}

// URLsWithPolicy resolves a group to script URLs. Under forceSave the
// whole group compiles into one bundle URL; otherwise each member resolves
// individually, so development pages load the editable originals.
func (s *Scripts) URLsWithPolicy(ctx context.Context, group string, include, exclude []string, forceSave bool) ([]string, error) {
	members, err := s.resolver.Resolve(group, include, exclude)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	if forceSave {
		url, err := s.cache.URLWithPolicy(ctx, s.Asset(members), true)
		if err != nil {
			return nil, err
		}
		return []string{url}, nil
	}
	return memberURLs(ctx, s.cache, members)
}

// Stylesheets bundles stylesheet groups through the asset cache.
type Stylesheets struct {
	cache        *assetcache.Cache
	resolver     GroupResolver
	staticURL    string
	minifier     Minifier
	failSilently bool
	log          *logger.Logger
}

// NewStylesheets creates the stylesheet bundling service
func NewStylesheets(cache *assetcache.Cache, resolver GroupResolver, staticURL string, minifier Minifier, failSilently bool, log *logger.Logger) *Stylesheets {
	return &Stylesheets{
		cache:        cache,
		resolver:     resolver,
		staticURL:    staticURL,
		minifier:     minifier,
		failSilently: failSilently,
		log:          log,
	}
}

// Asset builds the bundle asset for an ordered member list
func (s *Stylesheets) Asset(members []asset.Asset) *StylesheetAsset {
	return NewStylesheet(members, s.resolver, s.cache, s.staticURL, s.minifier, s.failSilently, s.log)
}

// URLs resolves a group to stylesheet URLs under the default save policy
func (s *Stylesheets) URLs(ctx context.Context, group string, include, exclude []string) ([]string, error) {
	return s.URLsWithPolicy(ctx, group, include, exclude, s.cache.ForceSaveDefault())
}

// URLsWithPolicy resolves a group to stylesheet URLs, one compiled bundle
// under forceSave or the individual members otherwise.
func (s *Stylesheets) URLsWithPolicy(ctx context.Context, group string, include, exclude []string, forceSave bool) ([]string, error) {
	members, err := s.resolver.Resolve(group, include, exclude)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	if forceSave {
		url, err := s.cache.URLWithPolicy(ctx, s.Asset(members), true)
		if err != nil {
			return nil, err
		}
		return []string{url}, nil
	}
	return memberURLs(ctx, s.cache, members)
}

func memberURLs(ctx context.Context, cache *assetcache.Cache, members []asset.Asset) ([]string, error) {
	urls := make([]string, len(members))
	for i, member := range members {
		url, err := cache.URLWithPolicy(ctx, member, false)
		if err != nil {
			return nil, err
		}
		urls[i] = url
	}
	return urls, nil
}
