package bundle

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/storage"
)

var (
	cssURLPattern    = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)
	cssImportPattern = regexp.MustCompile(`@import\s+['"]([^'"]+)['"]`)

	cssCommentPattern    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssWhitespacePattern = regexp.MustCompile(`\s+`)
	cssSeparatorPattern  = regexp.MustCompile(`\s*([{};:,>])\s*`)
	// Go's regexp has no backreferences, so doubled-pair checking happens in
	// minifyCSS rather than in the pattern itself.
	cssHexPattern = regexp.MustCompile(`#([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})`)
)

// StylesheetAsset compiles an ordered list of stylesheets into a single
// bundle. Relative url() and @import references are rewritten against each
// owning sheet's URL so they stay valid from the bundle's stored location,
// and references into the static namespace are routed through the asset
// cache so they self-invalidate with their target.
type StylesheetAsset struct {
	*asset.GroupedAsset
	members      []asset.Asset
	static       asset.StaticResolver
	cache        *assetcache.Cache
	staticURL    string
	minifier     Minifier
	failSilently bool
	log          *logger.Logger
}

// NewStylesheet creates a stylesheet bundle over the given members in
// order. staticURL is the public prefix identifying static references;
// minifier may be nil, in which case a conservative built-in minification
// is applied instead.
func NewStylesheet(members []asset.Asset, static asset.StaticResolver, cache *assetcache.Cache, staticURL string, minifier Minifier, failSilently bool, log *logger.Logger) *StylesheetAsset {
	return &StylesheetAsset{
		GroupedAsset: asset.NewGrouped(members, ""),
		members:      members,
		static:       static,
		cache:        cache,
		staticURL:    staticURL,
		minifier:     minifier,
		failSilently: failSilently,
		log:          log,
	}
}

// IdentityParams distinguishes a stylesheet bundle from other bundles of
// the same members.
func (a *StylesheetAsset) IdentityParams() (asset.Params, error) {
	params, err := a.GroupedAsset.IdentityParams()
	if err != nil {
		return nil, err
	}
	params["bundle"] = "stylesheet"
	return params, nil
}

// Save compiles and stores the bundle. A minifier failure under the
// fail-silently policy falls back to the unminified compilation.
func (a *StylesheetAsset) Save(ctx context.Context, store storage.Storage, name string, meta asset.Meta) error {
	compiled, err := a.compile(ctx)
	if err != nil {
		return err
	}
	return store.Save(ctx, name, bytes.NewReader(compiled))
}

// compile reads each member, rewrites its references against its own URL,
// and joins the results. Rewriting happens before joining because relative
// references only make sense against the sheet that contains them.
func (a *StylesheetAsset) compile(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	for _, member := range a.members {
		handle, err := member.Open(ctx)
		if err != nil {
			return nil, &CompileError{Message: "failed to open stylesheet " + member.Name() + ": " + err.Error()}
		}
		data, err := io.ReadAll(handle)
		handle.Close()
		if err != nil {
			return nil, &CompileError{Message: "failed to read stylesheet " + member.Name() + ": " + err.Error()}
		}

		if memberURL, ok := member.URL(); ok {
			data = a.rewriteRefs(ctx, data, memberURL)
		}
		buf.Write(data)
	}
	compiled := buf.Bytes()

	if a.minifier == nil {
		return minifyCSS(compiled), nil
	}

	minified, err := a.minifier.Minify(ctx, "text/css", compiled)
	if err != nil {
		if !a.failSilently {
			return nil, err
		}
		a.log.Warn("stylesheet minification failed, serving unminified bundle",
			"asset", a.Name(),
			"error", err)
		return compiled, nil
	}
	return minified, nil
}

// rewriteRefs resolves every url() and @import reference against the
// owning sheet's URL.
func (a *StylesheetAsset) rewriteRefs(ctx context.Context, src []byte, memberURL string) []byte {
	base, err := url.Parse(memberURL)
	if err != nil {
		return src
	}

	out := replaceRefs(cssURLPattern, src, func(ref string) string {
		return "url(" + a.resolveRef(ctx, base, ref) + ")"
	})
	return replaceRefs(cssImportPattern, out, func(ref string) string {
		return `@import "` + a.resolveRef(ctx, base, ref) + `"`
	})
}

// resolveRef resolves one reference. Data URIs and pure fragments pass
// through untouched; references landing in the static namespace are routed
// through the asset cache, keeping any query and fragment suffix.
func (a *StylesheetAsset) resolveRef(ctx context.Context, base *url.URL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") {
		return ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	resolved := base.ResolveReference(refURL)

	if a.staticURL != "" && resolved.Host == "" && strings.HasPrefix(resolved.Path, a.staticURL) {
		name := strings.TrimPrefix(resolved.Path, a.staticURL)
		if busted, ok := a.bustedURL(ctx, name); ok {
			return busted + urlSuffix(resolved)
		}
	}
	return resolved.String()
}

// bustedURL resolves a static name through the asset cache. A reference to
// an asset the catalog does not know stays as-is rather than breaking the
// whole bundle.
func (a *StylesheetAsset) bustedURL(ctx context.Context, name string) (string, bool) {
	target, err := a.static.Static(name)
	if err != nil {
		a.log.Warn("stylesheet references unknown static asset",
			"asset", a.Name(),
			"reference", name)
		return "", false
	}
	busted, err := a.cache.URL(ctx, target)
	if err != nil {
		a.log.Warn("failed to cache stylesheet reference",
			"asset", a.Name(),
			"reference", name,
			"error", err)
		return "", false
	}
	return busted, true
}

func urlSuffix(u *url.URL) string {
	var suffix string
	if u.RawQuery != "" {
		suffix += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		suffix += "#" + u.Fragment
	}
	return suffix
}

// replaceRefs rewrites the first capture group of every pattern match
func replaceRefs(pattern *regexp.Regexp, src []byte, rewrite func(ref string) string) []byte {
	return pattern.ReplaceAllFunc(src, func(match []byte) []byte {
		groups := pattern.FindSubmatch(match)
		if groups == nil {
			return match
		}
		return []byte(rewrite(string(groups[1])))
	})
}

// minifyCSS is the built-in fallback minification: strip comments,
// collapse whitespace and shorten doubled hex colors. It is deliberately
// conservative; a configured minifier does a better job.
func minifyCSS(src []byte) []byte {
	out := cssCommentPattern.ReplaceAll(src, nil)
	out = cssWhitespacePattern.ReplaceAll(out, []byte(" "))
	out = cssSeparatorPattern.ReplaceAll(out, []byte("$1"))
	out = cssHexPattern.ReplaceAllFunc(out, func(m []byte) []byte {
		if m[1] == m[2] && m[3] == m[4] && m[5] == m[6] {
			return []byte{'#', m[1], m[3], m[5]}
		}
		return m
	})
	return bytes.TrimSpace(out)
}
