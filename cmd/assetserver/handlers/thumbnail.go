package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/models"
	"github.com/staticbay/assetpipe/common/bootstrap"
	"github.com/staticbay/assetpipe/thumbnail"
)

// ThumbnailHandler handles thumbnail derivation requests
type ThumbnailHandler struct {
	components *bootstrap.Components
	engine     *thumbnail.Engine
}

// NewThumbnailHandler creates a new thumbnail handler
func NewThumbnailHandler(c *container.Container) *ThumbnailHandler {
	return &ThumbnailHandler{
		components: c.Components,
		engine:     c.Thumbnails,
	}
}

// CreateThumbnail materializes a thumbnail and returns its URL and size
// POST /api/v1/thumbnails
func (h *ThumbnailHandler) CreateThumbnail(c echo.Context) error {
	var req models.ThumbnailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Method == "" {
		req.Method = thumbnail.Proportional
	}

	thumb, err := h.engine.Thumbnail(req.Name, req.Width, req.Height, req.Method)
	if err != nil {
		var confErr *thumbnail.ConfigurationError
		if errors.As(err, &confErr) {
			return echo.NewHTTPError(http.StatusBadRequest, confErr.Error())
		}
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		h.components.Logger.Error("failed to build thumbnail", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build thumbnail")
	}

	ctx := c.Request().Context()
	url, err := thumb.URL(ctx)
	if err != nil {
		h.components.Logger.Error("failed to materialize thumbnail", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to materialize thumbnail")
	}
	width, height, err := thumb.Size(ctx)
	if err != nil {
		h.components.Logger.Error("failed to read thumbnail size", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to materialize thumbnail")
	}

	h.components.Logger.Info("thumbnail resolved",
		"name", req.Name,
		"width", width,
		"height", height)

	return c.JSON(http.StatusOK, models.ThumbnailResponse{
		Name:   req.Name,
		URL:    url,
		Width:  width,
		Height: height,
	})
}
