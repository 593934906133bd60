package video

import (
	"context"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/assetcache"
	"github.com/staticbay/assetpipe/common/logger"
)

// Engine produces cached video derivatives: poster frames and re-encoded
// clips. All pixel work happens in an external ffmpeg process.
type Engine struct {
	cache  *assetcache.Cache
	static asset.StaticResolver
	ffmpeg string
	log    *logger.Logger
}

// NewEngine creates a video engine over an asset cache. ffmpegPath is the
// encoder binary, looked up on PATH when given as a bare name.
func NewEngine(cache *assetcache.Cache, static asset.StaticResolver, ffmpegPath string, log *logger.Logger) *Engine {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Engine{
		cache:  cache,
		static: static,
		ffmpeg: ffmpegPath,
		log:    log,
	}
}

// Request describes one video derivation.
type Request struct {
	// Format names the output: a still-frame image format or a video
	// container. Defaults to "jpeg".
	Format string

	// Position is the capture offset in seconds. Negative means "pick
	// one": a quarter of the source duration.
	Position int

	// Width and Height bound the output geometry; zero keeps the source
	// dimension subject to the resize method.
	Width  int
	Height int

	// Method is the resize policy applied via the encoder's filter graph.
	// Defaults to "resize".
	Method string
}

// ThumbnailPath materializes the derivative and returns its filesystem
// path. Video work always saves: there is no passthrough policy because
// the derivative never equals the source.
func (e *Engine) ThumbnailPath(ctx context.Context, source any, req Request) (string, error) {
	a, err := e.transform(source, req)
	if err != nil {
		return "", err
	}
	return e.cache.PathWithPolicy(ctx, a, true)
}

// ThumbnailURL materializes the derivative and returns its public URL.
func (e *Engine) ThumbnailURL(ctx context.Context, source any, req Request) (string, error) {
	a, err := e.transform(source, req)
	if err != nil {
		return "", err
	}
	return e.cache.URLWithPolicy(ctx, a, true)
}

func (e *Engine) transform(source any, req Request) (*ThumbnailAsset, error) {
	if req.Format == "" {
		req.Format = "jpeg"
	}
	if req.Method == "" {
		req.Method = MethodResize
	}

	format, err := LookupFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if _, err := FilterExpr(req.Method, req.Width, req.Height); err != nil {
		return nil, err
	}

	base, err := asset.Adapt(source, e.static)
	if err != nil {
		return nil, err
	}

	position := req.Position
	if position < 0 {
		position = -1
	}

	return NewAsset(base, format, req.Method, position, req.Width, req.Height, e.ffmpeg, e.log), nil
}
