package bundle

import (
	"bytes"
	"context"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/storage"
)

// scriptJoin separates member scripts so a member missing its trailing
// semicolon cannot swallow the next one.
const scriptJoin = ";"

// ScriptAsset compiles an ordered list of scripts into a single bundle.
// The concatenation is wrapped in an IIFE so top-level var declarations
// stay out of the global scope, then minified when a minifier is
// configured.
type ScriptAsset struct {
	*asset.GroupedAsset
	minifier     Minifier
	failSilently bool
	log          *logger.Logger
}

// NewScript creates a script bundle over the given members in order.
// minifier may be nil to skip minification entirely.
func NewScript(members []asset.Asset, minifier Minifier, failSilently bool, log *logger.Logger) *ScriptAsset {
	return &ScriptAsset{
		GroupedAsset: asset.NewGrouped(members, scriptJoin),
		minifier:     minifier,
		failSilently: failSilently,
		log:          log,
	}
}

// IdentityParams distinguishes a script bundle from other bundles of the
// same members.
func (a *ScriptAsset) IdentityParams() (asset.Params, error) {
	params, err := a.GroupedAsset.IdentityParams()
	if err != nil {
		return nil, err
	}
	params["bundle"] = "script"
	return params, nil
}

// Save compiles and stores the bundle. A minifier failure under the
// fail-silently policy falls back to the unminified compilation instead of
// failing the request.
func (a *ScriptAsset) Save(ctx context.Context, store storage.Storage, name string, meta asset.Meta) error {
	compiled, err := a.compile(ctx)
	if err != nil {
		return err
	}
	return store.Save(ctx, name, bytes.NewReader(compiled))
}

func (a *ScriptAsset) compile(ctx context.Context) ([]byte, error) {
	contents, err := a.Contents(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("(function(window){")
	buf.Write(contents)
	buf.WriteString("}(window));")
	wrapped := buf.Bytes()

	if a.minifier == nil {
		return wrapped, nil
	}

	minified, err := a.minifier.Minify(ctx, "application/javascript", wrapped)
	if err != nil {
		if !a.failSilently {
			return nil, err
		}
		a.log.Warn("script minification failed, serving unminified bundle",
			"asset", a.Name(),
			"error", err)
		return wrapped, nil
	}
	return minified, nil
}
