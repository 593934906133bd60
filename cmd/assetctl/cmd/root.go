// Package cmd contains all CLI commands for assetctl
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/bundle"
	"github.com/staticbay/assetpipe/common/bootstrap"
	"github.com/staticbay/assetpipe/common/catalog"
	"github.com/staticbay/assetpipe/common/config"
	"github.com/staticbay/assetpipe/compiler"
	"github.com/staticbay/assetpipe/thumbnail"
	"github.com/staticbay/assetpipe/video"
)

var (
	logLevel  string
	logFormat string
	version   = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "Asset pipeline CLI",
	Long: `assetctl drives the asset pipeline from the command line.

It resolves and pre-compiles asset bundles into content-addressed storage
using the same configuration the serving process reads from the
environment.

Example usage:
  assetctl compile site admin        # Pre-compile bundle groups
  assetctl thumbnail img/hero.jpg --width 320
  assetctl video-thumbnail clips/intro.mp4 --position 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (overrides LOG_FORMAT)")
}

// pipeline holds the wired asset services a command works with.
type pipeline struct {
	Components  *bootstrap.Components
	Catalog     *catalog.Catalog
	Cache       *assetcache.Cache
	Thumbnails  *thumbnail.Engine
	Videos      *video.Engine
	Scripts     *bundle.Scripts
	Stylesheets *bundle.Stylesheets
	Compiler    *compiler.Registry
}

// setupPipeline bootstraps the components and wires the asset services the
// same way the serving process does.
func setupPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load("assetctl")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Service.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.Service.LogFormat = logFormat
	}

	components, err := bootstrap.Setup(ctx, "assetctl", bootstrap.WithCustomConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap: %w", err)
	}

	staticCatalog := catalog.New(cfg.Assets.StaticRoots, cfg.Assets.StaticURL, components.Logger)
	if err := staticCatalog.Init(); err != nil {
		components.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize static catalog: %w", err)
	}
	if cfg.Assets.GroupManifest != "" {
		if err := staticCatalog.LoadManifest(cfg.Assets.GroupManifest); err != nil {
			components.Shutdown(ctx)
			return nil, fmt.Errorf("failed to load group manifest: %w", err)
		}
	}

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

	minifier := bundle.NewMinifier(cfg.Tools)
	scripts := bundle.NewScripts(assetCache, staticCatalog, minifier, cfg.Tools.FailSilently, components.Logger)
	stylesheets := bundle.NewStylesheets(assetCache, staticCatalog, cfg.Assets.StaticURL, minifier, cfg.Tools.FailSilently, components.Logger)

	registry := compiler.NewRegistry(components.Logger)
	if err := registry.Register(compiler.NewScriptPlugin(scripts)); err != nil {
		components.Shutdown(ctx)
		return nil, err
	}
	if err := registry.Register(compiler.NewStylesheetPlugin(stylesheets)); err != nil {
		components.Shutdown(ctx)
		return nil, err
	}

	return &pipeline{
		Components:  components,
		Catalog:     staticCatalog,
		Cache:       assetCache,
		Thumbnails:  thumbnail.NewEngine(assetCache, staticCatalog, components.Logger),
		Videos:      video.NewEngine(assetCache, staticCatalog, cfg.Tools.FFmpegPath, components.Logger),
		Scripts:     scripts,
		Stylesheets: stylesheets,
		Compiler:    registry,
	}, nil
}

func (p *pipeline) Close(ctx context.Context) {
	p.Components.Shutdown(ctx)
}
