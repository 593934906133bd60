package compiler

import (
	"context"

	"github.com/staticbay/assetpipe/bundle"
)

// ScriptPlugin pre-compiles script bundles.
type ScriptPlugin struct {
	scripts *bundle.Scripts
}

// NewScriptPlugin creates the script compile plugin
func NewScriptPlugin(scripts *bundle.Scripts) *ScriptPlugin {
	return &ScriptPlugin{scripts: scripts}
}

func (p *ScriptPlugin) Type() string {
	return "script"
}

// Compile always saves: pre-compilation exists to warm the cache, so the
// development passthrough policy does not apply.
func (p *ScriptPlugin) Compile(ctx context.Context, group string) ([]string, error) {
	return p.scripts.URLsWithPolicy(ctx, group, nil, nil, true)
}

// StylesheetPlugin pre-compiles stylesheet bundles.
type StylesheetPlugin struct {
	stylesheets *bundle.Stylesheets
}

// NewStylesheetPlugin creates the stylesheet compile plugin
func NewStylesheetPlugin(stylesheets *bundle.Stylesheets) *StylesheetPlugin {
	return &StylesheetPlugin{stylesheets: stylesheets}
}

func (p *StylesheetPlugin) Type() string {
	return "stylesheet"
}

func (p *StylesheetPlugin) Compile(ctx context.Context, group string) ([]string, error) {
	return p.stylesheets.URLsWithPolicy(ctx, group, nil, nil, true)
}
