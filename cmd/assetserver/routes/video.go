package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/handlers"
)

// RegisterVideoRoutes registers video derivation routes
func RegisterVideoRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewVideoHandler(c)

	e.POST("/api/v1/videos/thumbnails", h.CreateThumbnail) // POST /api/v1/videos/thumbnails
}
