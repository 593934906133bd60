package bundle

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/common/cache"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/metastore"
	"github.com/staticbay/assetpipe/common/storage"
)

// fakeStatic resolves names against an in-memory set of buffer assets.
type fakeStatic struct {
	assets map[string]asset.Asset
}

func (r *fakeStatic) Static(name string) (asset.Asset, error) {
	if a, ok := r.assets[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("static asset not found: %s", name)
}

func newSheetFixture(t *testing.T) (*fakeStatic, *assetcache.Cache) {
	t.Helper()
	log := logger.New("error", "text")

	backing := cache.NewMemoryCache(log)
	t.Cleanup(func() { backing.Close() })

	static := &fakeStatic{assets: map[string]asset.Asset{
		"img/bg.png": asset.NewBufferURL("bg.png", "/static/img/bg.png", []byte("png bytes")),
	}}
	c := assetcache.New(
		storage.NewMemory("/media"),
		metastore.NewMemory(backing, "test"),
		nil,
		assetcache.Options{ForceSave: true},
		log,
	)
	return static, c
}

func compileSheet(t *testing.T, static *fakeStatic, c *assetcache.Cache, css string) string {
	t.Helper()
	member := asset.NewBufferURL("site.css", "/static/css/site.css", []byte(css))
	sheet := NewStylesheet(
		[]asset.Asset{member},
		static, c, "/static/",
		&fakeMinifier{}, // identity minifier, keeps the rewrite visible
		false,
		logger.New("error", "text"),
	)
	compiled, err := sheet.compile(context.Background())
	require.NoError(t, err)
	return string(compiled)
}

func TestStylesheetRewritesRelativeURL(t *testing.T) {
	static, c := newSheetFixture(t)

	out := compileSheet(t, static, c, "body{background:url(../img/bg.png);}")

	assert.Contains(t, out, "url(/media/assets/", "relative reference should be cache-busted")
	assert.NotContains(t, out, "../img/bg.png")
	assert.True(t, strings.Contains(out, ".png)"), "stored reference keeps its extension: %s", out)
}

func TestStylesheetPreservesQueryAndFragment(t *testing.T) {
	static, c := newSheetFixture(t)

	out := compileSheet(t, static, c, `body{background:url("../img/bg.png?v=2#frag");}`)

	assert.Contains(t, out, "?v=2#frag)", "query and fragment must survive the rewrite: %s", out)
	assert.Contains(t, out, "/media/assets/")
}

func TestStylesheetRewritesImport(t *testing.T) {
	static, c := newSheetFixture(t)

	out := compileSheet(t, static, c, `@import "reset.css";`)

	// reset.css is not in the static catalog, so it resolves against the
	// owning sheet's URL but is not cache-busted.
	assert.Contains(t, out, `@import "/static/css/reset.css"`, out)
}

func TestStylesheetLeavesDataURIs(t *testing.T) {
	static, c := newSheetFixture(t)

	css := "body{background:url(data:image/png;base64,AAAA);}"
	out := compileSheet(t, static, c, css)

	assert.Contains(t, out, "url(data:image/png;base64,AAAA)")
}

func TestStylesheetLeavesAbsoluteURLs(t *testing.T) {
	static, c := newSheetFixture(t)

	out := compileSheet(t, static, c, "body{background:url(https://cdn.example.com/x.png);}")

	assert.Contains(t, out, "url(https://cdn.example.com/x.png)")
}

func TestStylesheetKeepsUnknownStaticRefs(t *testing.T) {
	static, c := newSheetFixture(t)

	out := compileSheet(t, static, c, "body{background:url(../img/missing.png);}")

	// The reference resolves against the sheet but stays un-busted rather
	// than failing the whole bundle.
	assert.Contains(t, out, "url(/static/img/missing.png)")
}

func TestStylesheetJoinsWithoutSeparator(t *testing.T) {
	members := []asset.Asset{
		asset.NewBufferURL("a.css", "/static/a.css", []byte("a{color:red}")),
		asset.NewBufferURL("b.css", "/static/b.css", []byte("b{color:blue}")),
	}
	sheet := NewStylesheet(members, nil, nil, "", &fakeMinifier{}, false, logger.New("error", "text"))

	compiled, err := sheet.compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a{color:red}b{color:blue}", string(compiled))
}

func TestStylesheetMinifierFailureFallsBackSilently(t *testing.T) {
	static, c := newSheetFixture(t)
	member := asset.NewBufferURL("site.css", "/static/css/site.css", []byte("a { color: red; }"))

	sheet := NewStylesheet([]asset.Asset{member}, static, c, "/static/",
		&fakeMinifier{fail: true}, true, logger.New("error", "text"))

	compiled, err := sheet.compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a { color: red; }", string(compiled),
		"fail-silently must serve the unminified concatenation")
}

func TestMinifyCSS(t *testing.T) {
	css := `/* header */
a  {
  color : #ffffff ;
}`
	out := string(minifyCSS([]byte(css)))

	assert.NotContains(t, out, "/*")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "#fff")
	assert.Contains(t, out, "a{color:#fff")
}
