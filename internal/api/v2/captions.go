// internal/api/v2/captions.go
package api

import (
	"net/http"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/tmattila/artstore-go/internal/datastore"
)

// initCaptionRoutes registers caption CRUD and lookup endpoints
func (c *Controller) initCaptionRoutes() {
	c.Group.POST("/captions/", c.CreateCaption)
	c.Group.GET("/captions/", c.ListCaptions)
	c.Group.GET("/captions/preset/:preset_key", c.GetCaptionByPresetKey)
	c.Group.GET("/captions/:id", c.GetCaption)
	c.Group.PUT("/captions/:id", c.UpdateCaption)
	c.Group.DELETE("/captions/:id", c.DeleteCaption)
	c.Group.GET("/captions/:id/artifacts", c.ListCaptionArtifacts)
}

// initArtifactCaptionMapRoutes registers artifact-caption association endpoints
func (c *Controller) initArtifactCaptionMapRoutes() {
	c.Group.POST("/artifact-caption-maps/", c.CreateArtifactCaptionMap)
	c.Group.POST("/artifact-caption-maps/batch", c.CreateArtifactCaptionMaps)
	c.Group.DELETE("/artifact-caption-maps/:artifact_id/:caption_id", c.DeleteArtifactCaptionMap)
}

// CaptionListResponse wraps a page of captions with pagination metadata.
type CaptionListResponse struct {
	Captions []datastore.Caption `json:"captions"`
	Total    int64               `json:"total"`
	Skip     int                 `json:"skip"`
	Limit    int                 `json:"limit"`
}

// BatchMapsRequest is the body of the batch association endpoint.
type BatchMapsRequest struct {
	Maps []datastore.ArtifactCaptionPair `json:"maps"`
}

// CreateCaption handles POST /api/v2/captions/
func (c *Controller) CreateCaption(ctx echo.Context) error {
	var caption datastore.Caption
	if err := ctx.Bind(&caption); err != nil {
		return c.HandleError(ctx, err, "Invalid caption payload", http.StatusBadRequest)
	}

	caption.ID = ""
	caption.IsDeleted = false
	caption.DeletedTime = nil

	created, err := c.DS.CreateCaption(&caption)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to create caption")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Caption created", "caption_id", created.ID)
	return ctx.JSON(http.StatusCreated, created)
}

// GetCaption handles GET /api/v2/captions/:id
func (c *Controller) GetCaption(ctx echo.Context) error {
	id := ctx.Param("id")

	caption, err := c.DS.GetCaption(id)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get caption")
	}

	return ctx.JSON(http.StatusOK, caption)
}

// GetCaptionByPresetKey handles GET /api/v2/captions/preset/:preset_key
func (c *Controller) GetCaptionByPresetKey(ctx echo.Context) error {
	key := ctx.Param("preset_key")

	caption, err := c.DS.GetCaptionByPresetKey(key)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get caption by preset key")
	}

	return ctx.JSON(http.StatusOK, caption)
}

// ListCaptions handles GET /api/v2/captions/
func (c *Controller) ListCaptions(ctx echo.Context) error {
	filter := datastore.CaptionFilter{
		Skip:           queryInt(ctx, "skip", 0),
		Limit:          queryInt(ctx, "limit", 0),
		CaptionType:    ctx.QueryParam("caption_type"),
		IncludeDeleted: queryBool(ctx, "include_deleted"),
	}

	captions, total, err := c.DS.ListCaptions(filter)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list captions")
	}

	return ctx.JSON(http.StatusOK, CaptionListResponse{
		Captions: captions,
		Total:    total,
		Skip:     filter.Skip,
		Limit:    filter.Limit,
	})
}

// UpdateCaption handles PUT /api/v2/captions/:id
func (c *Controller) UpdateCaption(ctx echo.Context) error {
	id := ctx.Param("id")

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid caption payload", http.StatusBadRequest)
	}

	caption, err := c.DS.UpdateCaption(id, updates)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to update caption")
	}

	return ctx.JSON(http.StatusOK, caption)
}

// DeleteCaption handles DELETE /api/v2/captions/:id
func (c *Controller) DeleteCaption(ctx echo.Context) error {
	id := ctx.Param("id")
	permanent := queryBool(ctx, "permanent")

	if err := c.DS.DeleteCaption(id, permanent); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete caption")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Caption deleted", "caption_id", id, "permanent", permanent)
	return ctx.NoContent(http.StatusNoContent)
}

// ListCaptionArtifacts handles GET /api/v2/captions/:id/artifacts
func (c *Controller) ListCaptionArtifacts(ctx echo.Context) error {
	id := ctx.Param("id")
	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 0)

	artifacts, err := c.DS.ListCaptionArtifacts(id, skip, limit)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list caption artifacts")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"caption_id": id,
		"artifacts":  artifacts,
	})
}

// CreateArtifactCaptionMap handles POST /api/v2/artifact-caption-maps/
func (c *Controller) CreateArtifactCaptionMap(ctx echo.Context) error {
	var pair datastore.ArtifactCaptionPair
	if err := ctx.Bind(&pair); err != nil {
		return c.HandleError(ctx, err, "Invalid association payload", http.StatusBadRequest)
	}
	if pair.ArtifactID == "" || pair.CaptionID == "" {
		return c.HandleError(ctx, nil, "artifact_id and caption_id must not be empty", http.StatusBadRequest)
	}

	mapping, err := c.DS.CreateArtifactCaptionMap(pair.ArtifactID, pair.CaptionID)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to create artifact caption map")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact caption map created",
		"artifact_id", pair.ArtifactID, "caption_id", pair.CaptionID)
	return ctx.JSON(http.StatusCreated, mapping)
}

// CreateArtifactCaptionMaps handles POST /api/v2/artifact-caption-maps/batch
func (c *Controller) CreateArtifactCaptionMaps(ctx echo.Context) error {
	var req BatchMapsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid batch payload", http.StatusBadRequest)
	}
	if len(req.Maps) == 0 {
		return c.HandleError(ctx, nil, "maps must not be empty", http.StatusBadRequest)
	}

	result, err := c.DS.CreateArtifactCaptionMaps(req.Maps)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to create artifact caption maps")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact caption maps batch processed",
		"created", result.CreatedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors))
	return ctx.JSON(http.StatusOK, result)
}

// DeleteArtifactCaptionMap handles DELETE /api/v2/artifact-caption-maps/:artifact_id/:caption_id
func (c *Controller) DeleteArtifactCaptionMap(ctx echo.Context) error {
	artifactID := ctx.Param("artifact_id")
	captionID := ctx.Param("caption_id")

	if err := c.DS.DeleteArtifactCaptionMap(artifactID, captionID); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete artifact caption map")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact caption map deleted",
		"artifact_id", artifactID, "caption_id", captionID)
	return ctx.NoContent(http.StatusNoContent)
}
