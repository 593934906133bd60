package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staticbay/assetpipe/cmd/assetserver/container"
	"github.com/staticbay/assetpipe/cmd/assetserver/models"
	"github.com/staticbay/assetpipe/common/bootstrap"
)

// BundleHandler handles script and stylesheet bundle requests
type BundleHandler struct {
	components *bootstrap.Components
	container  *container.Container
}

// NewBundleHandler creates a new bundle handler
func NewBundleHandler(c *container.Container) *BundleHandler {
	return &BundleHandler{
		components: c.Components,
		container:  c,
	}
}

// GetScripts resolves a script group to its URLs
// GET /api/v1/bundles/scripts/:group
func (h *BundleHandler) GetScripts(c echo.Context) error {
	return h.resolve(c, h.container.Scripts.URLsWithPolicy)
}

// GetStylesheets resolves a stylesheet group to its URLs
// GET /api/v1/bundles/stylesheets/:group
func (h *BundleHandler) GetStylesheets(c echo.Context) error {
	return h.resolve(c, h.container.Stylesheets.URLsWithPolicy)
}

func (h *BundleHandler) resolve(c echo.Context, urls func(ctx context.Context, group string, include, exclude []string, forceSave bool) ([]string, error)) error {
	group := c.Param("group")
	if group == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group is required")
	}

	include := splitPatterns(c.QueryParam("include"))
	exclude := splitPatterns(c.QueryParam("exclude"))

	forceSave := h.container.Cache.ForceSaveDefault()
	if c.QueryParam("compile") == "true" {
		forceSave = true
	}

	resolved, err := urls(c.Request().Context(), group, include, exclude, forceSave)
	if err != nil {
		h.components.Logger.Error("failed to resolve bundle group", "group", group, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve bundle group")
	}
	if len(resolved) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no assets matched the group")
	}

	return c.JSON(http.StatusOK, models.BundleResponse{
		Group: group,
		URLs:  resolved,
	})
}

// Compile eagerly compiles bundle groups through every registered plugin
// POST /api/v1/bundles/compile
func (h *BundleHandler) Compile(c echo.Context) error {
	var req models.CompileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Groups) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "groups are required")
	}

	if err := h.container.Compiler.CompileAll(c.Request().Context(), req.Groups); err != nil {
		h.components.Logger.Error("bundle compilation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "bundle compilation failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "compiled",
		"groups": req.Groups,
	})
}

func splitPatterns(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
