package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/models"
	"github.com/staticbay/assetpipe/common/bootstrap"
)

// AssetHandler handles plain asset resolution requests
type AssetHandler struct {
	components *bootstrap.Components
	container  *container.Container
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(c *container.Container) *AssetHandler {
	return &AssetHandler{
		components: c.Components,
		container:  c,
	}
}

// GetURL resolves a static asset to its public URL. Under the configured
// save policy this is the cache-busted stored URL; in development it is
// the asset's own static URL.
// GET /api/v1/assets/url?name=img/logo.png
func (h *AssetHandler) GetURL(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	a, err := h.container.Catalog.Static(name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		h.components.Logger.Error("failed to resolve asset", "name", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve asset")
	}

	url, err := h.container.Cache.URL(c.Request().Context(), a)
	if err != nil {
		h.components.Logger.Error("failed to cache asset", "name", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to cache asset")
	}

	return c.JSON(http.StatusOK, models.AssetResponse{
		Name: name,
		URL:  url,
	})
}

// Refresh rescans the static catalog roots
// POST /api/v1/assets/refresh
func (h *AssetHandler) Refresh(c echo.Context) error {
	if err := h.container.Catalog.Refresh(); err != nil {
		h.components.Logger.Error("failed to refresh catalog", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to refresh catalog")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}
