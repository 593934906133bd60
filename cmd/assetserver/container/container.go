package container

import (
	"fmt"

	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/bundle"
	"github.com/staticbay/assetpipe/common/bootstrap"
	"github.com/staticbay/assetpipe/common/catalog"
	"github.com/staticbay/assetpipe/compiler"
	"github.com/staticbay/assetpipe/thumbnail"
	"github.com/staticbay/assetpipe/video"
)

// Container holds all initialized services (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Asset resolution
	Catalog *catalog.Catalog
	Cache   *assetcache.Cache

	// Derivation engines
	Thumbnails  *thumbnail.Engine
	Videos      *video.Engine
	Scripts     *bundle.Scripts
	Stylesheets *bundle.Stylesheets
	Compiler    *compiler.Registry
}

// NewContainer initializes all services once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Static catalog over the configured roots
	staticCatalog := catalog.New(cfg.Assets.StaticRoots, cfg.Assets.StaticURL, components.Logger)
	if err := staticCatalog.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize static catalog: %w", err)
	}
	if cfg.Assets.GroupManifest != "" {
		if err := staticCatalog.LoadManifest(cfg.Assets.GroupManifest); err != nil {
			return nil, fmt.Errorf("failed to load group manifest: %w", err)
		}
	}

	// Asset cache over the bootstrapped storage and metadata store
	assetCache := assetcache.New(
		components.Storage,
		components.Meta,
		components.Memo,
		assetcache.Options{
			Prefix:    cfg.Storage.Prefix,
			ForceSave: cfg.Assets.ForceSave,
		},
		components.Logger,
	)

	// Derivation engines (bottom-up: dependencies first)
	thumbnails := thumbnail.NewEngine(assetCache, staticCatalog, components.Logger)
	videos := video.NewEngine(assetCache, staticCatalog, cfg.Tools.FFmpegPath, components.Logger)

	minifier := bundle.NewMinifier(cfg.Tools)
	scripts := bundle.NewScripts(assetCache, staticCatalog, minifier, cfg.Tools.FailSilently, components.Logger)
	stylesheets := bundle.NewStylesheets(assetCache, staticCatalog, cfg.Assets.StaticURL, minifier, cfg.Tools.FailSilently, components.Logger)

	registry := compiler.NewRegistry(components.Logger)
	if err := registry.Register(compiler.NewScriptPlugin(scripts)); err != nil {
		return nil, fmt.Errorf("failed to register script plugin: %w", err)
	}
	if err := registry.Register(compiler.NewStylesheetPlugin(stylesheets)); err != nil {
		return nil, fmt.Errorf("failed to register stylesheet plugin: %w", err)
	}

	return &Container{
		Components:  components,
		Catalog:     staticCatalog,
		Cache:       assetCache,
		Thumbnails:  thumbnails,
		Videos:      videos,
		Scripts:     scripts,
		Stylesheets: stylesheets,
		Compiler:    registry,
	}, nil
}
