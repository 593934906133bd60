package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/routes"
	"github.com/staticbay/assetpipe/common/bootstrap"
	ratelimitmw "github.com/staticbay/assetpipe/common/middleware"
	"github.com/staticbay/assetpipe/common/ratelimit"
	"github.com/staticbay/assetpipe/common/server"
	"github.com/staticbay/assetpipe/common/telemetry"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (storage, metadata store, logger)
	components, err := bootstrap.Setup(ctx, "assetserver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap assetserver: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e)
	setupRateLimits(e, components)

	// Setup health check
	setupHealthCheck(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Serve the cached asset tree
	setupMediaRoutes(e, components)

	if port := components.Config.Service.PprofPort; port > 0 {
		telemetry.New(port, components.Logger).Start()
	}

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupRateLimits throttles derivation requests when Redis is available.
// Disabled for the memory and postgres metadata backends: the counters need a
// shared store to mean anything across replicas.
func setupRateLimits(e *echo.Echo, components *bootstrap.Components) {
	cfg := components.Config.Service
	if components.Redis == nil || (cfg.RateLimitGlobal <= 0 && cfg.RateLimitClient <= 0) {
		return
	}

	limiter := ratelimit.New(components.Redis.GetUnderlying(), components.Logger)
	if cfg.RateLimitGlobal > 0 {
		e.Use(ratelimitmw.GlobalRateLimit(limiter, int64(cfg.RateLimitGlobal)))
	}
	if cfg.RateLimitClient > 0 {
		e.Use(ratelimitmw.ClientRateLimit(limiter, int64(cfg.RateLimitClient)))
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"service": "assetserver",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterAssetRoutes(e, serviceContainer)
	routes.RegisterThumbnailRoutes(e, serviceContainer)
	routes.RegisterVideoRoutes(e, serviceContainer)
	routes.RegisterBundleRoutes(e, serviceContainer)
}

// setupMediaRoutes serves the storage root under the public base URL, for
// deployments without a CDN in front.
func setupMediaRoutes(e *echo.Echo, components *bootstrap.Components) {
	baseURL := components.Config.Storage.BaseURL
	if strings.Contains(baseURL, "://") {
		// An absolute base URL means something else serves the files.
		return
	}
	prefix := "/" + strings.Trim(baseURL, "/")
	e.Static(prefix, components.Config.Storage.Root)
}

// startServer runs the Echo handler behind the graceful-shutdown wrapper
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("Starting assetserver", "port", port)

	srv := server.New("assetserver", port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
