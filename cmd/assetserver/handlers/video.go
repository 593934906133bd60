package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/models"
	"github.com/staticbay/assetpipe/common/bootstrap"
	"github.com/staticbay/assetpipe/video"
)

// VideoHandler handles video derivation requests
type VideoHandler struct {
	components *bootstrap.Components
	engine     *video.Engine
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(c *container.Container) *VideoHandler {
	return &VideoHandler{
		components: c.Components,
		engine:     c.Videos,
	}
}

// CreateThumbnail materializes a video derivative and returns its URL
// POST /api/v1/videos/thumbnails
func (h *VideoHandler) CreateThumbnail(c echo.Context) error {
	var req models.VideoThumbnailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	position := -1
	if req.Position != nil {
		if *req.Position < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "position must not be negative")
		}
		position = *req.Position
	}

	url, err := h.engine.ThumbnailURL(c.Request().Context(), req.Name, video.Request{
		Format:   req.Format,
		Position: position,
		Width:    req.Width,
		Height:   req.Height,
		Method:   req.Method,
	})
	if err != nil {
		var confErr *video.ConfigurationError
		if errors.As(err, &confErr) {
			return echo.NewHTTPError(http.StatusBadRequest, confErr.Error())
		}
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		var videoErr *video.VideoError
		if errors.As(err, &videoErr) {
			h.components.Logger.Error("video processing failed",
				"name", req.Name,
				"error", videoErr,
				"detail", videoErr.Detail)
			return echo.NewHTTPError(http.StatusInternalServerError, "video processing failed")
		}
		h.components.Logger.Error("failed to materialize video derivative", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to materialize video derivative")
	}

	h.components.Logger.Info("video derivative resolved", "name", req.Name, "format", req.Format)

	return c.JSON(http.StatusOK, models.VideoThumbnailResponse{
		Name: req.Name,
		URL:  url,
	})
}
