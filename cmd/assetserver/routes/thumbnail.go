package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/handlers"
)

// RegisterThumbnailRoutes registers thumbnail derivation routes
func RegisterThumbnailRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewThumbnailHandler(c)

	e.POST("/api/v1/thumbnails", h.CreateThumbnail) // POST /api/v1/thumbnails
}
