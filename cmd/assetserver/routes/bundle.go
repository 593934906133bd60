package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/handlers"
)

// RegisterBundleRoutes registers script and stylesheet bundle routes
func RegisterBundleRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewBundleHandler(c)

	bundles := e.Group("/api/v1/bundles")
	{
		bundles.GET("/scripts/:group", h.GetScripts)         // GET /api/v1/bundles/scripts/site
		bundles.GET("/stylesheets/:group", h.GetStylesheets) // GET /api/v1/bundles/stylesheets/site
		bundles.POST("/compile", h.Compile)                  // POST /api/v1/bundles/compile
	}
}
