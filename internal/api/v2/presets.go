// internal/api/v2/presets.go
package api

import (
	"net/http"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/tmattila/artstore-go/internal/datastore"
)

// initPresetRoutes registers caption preset endpoints
func (c *Controller) initPresetRoutes() {
	c.Group.POST("/presets/", c.CreateCaptionPreset)
	c.Group.GET("/presets/", c.ListCaptionPresets)
	c.Group.GET("/presets/:preset_key", c.GetCaptionPreset)
	c.Group.PUT("/presets/:preset_key", c.UpdateCaptionPreset)
	c.Group.DELETE("/presets/:preset_key", c.DeleteCaptionPreset)
}

// PresetListResponse wraps a page of presets with pagination metadata.
type PresetListResponse struct {
	Presets []datastore.CaptionPreset `json:"presets"`
	Total   int64                     `json:"total"`
	Skip    int                       `json:"skip"`
	Limit   int                       `json:"limit"`
}

// CreateCaptionPreset handles POST /api/v2/presets/
func (c *Controller) CreateCaptionPreset(ctx echo.Context) error {
	var preset datastore.CaptionPreset
	if err := ctx.Bind(&preset); err != nil {
		return c.HandleError(ctx, err, "Invalid preset payload", http.StatusBadRequest)
	}

	if preset.PresetKey == "" {
		return c.HandleError(ctx, nil, "preset_key must not be empty", http.StatusBadRequest)
	}
	preset.IsDeleted = false
	preset.DeletedTime = nil

	if err := c.DS.CreateCaptionPreset(&preset); err != nil {
		return c.handleDSError(ctx, err, "Failed to create caption preset")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Caption preset created", "preset_key", preset.PresetKey)
	return ctx.JSON(http.StatusCreated, preset)
}

// GetCaptionPreset handles GET /api/v2/presets/:preset_key
func (c *Controller) GetCaptionPreset(ctx echo.Context) error {
	key := ctx.Param("preset_key")

	preset, err := c.DS.GetCaptionPreset(key)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get caption preset")
	}

	return ctx.JSON(http.StatusOK, preset)
}

// ListCaptionPresets handles GET /api/v2/presets/
func (c *Controller) ListCaptionPresets(ctx echo.Context) error {
	filter := datastore.PresetFilter{
		Skip:           queryInt(ctx, "skip", 0),
		Limit:          queryInt(ctx, "limit", 0),
		IncludeDeleted: queryBool(ctx, "include_deleted"),
	}

	presets, total, err := c.DS.ListCaptionPresets(filter)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list caption presets")
	}

	return ctx.JSON(http.StatusOK, PresetListResponse{
		Presets: presets,
		Total:   total,
		Skip:    filter.Skip,
		Limit:   filter.Limit,
	})
}

// UpdateCaptionPreset handles PUT /api/v2/presets/:preset_key
func (c *Controller) UpdateCaptionPreset(ctx echo.Context) error {
	key := ctx.Param("preset_key")

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid preset payload", http.StatusBadRequest)
	}

	preset, err := c.DS.UpdateCaptionPreset(key, updates)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to update caption preset")
	}

	return ctx.JSON(http.StatusOK, preset)
}

// DeleteCaptionPreset handles DELETE /api/v2/presets/:preset_key
func (c *Controller) DeleteCaptionPreset(ctx echo.Context) error {
	key := ctx.Param("preset_key")
	permanent := queryBool(ctx, "permanent")

	if err := c.DS.DeleteCaptionPreset(key, permanent); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete caption preset")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Caption preset deleted", "preset_key", key, "permanent", permanent)
	return ctx.NoContent(http.StatusNoContent)
}
