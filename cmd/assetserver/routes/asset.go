package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/handlers"
)

// RegisterAssetRoutes registers plain asset resolution routes
func RegisterAssetRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAssetHandler(c)

	assets := e.Group("/api/v1/assets")
	{
		assets.GET("/url", h.GetURL)       // GET /api/v1/assets/url?name=img/logo.png
		assets.POST("/refresh", h.Refresh) // POST /api/v1/assets/refresh
	}
}
