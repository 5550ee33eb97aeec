// internal/api/v2/artifacts.go
package api

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/tmattila/artstore-go/internal/datastore"
)

// initArtifactRoutes registers artifact CRUD and lookup endpoints
func (c *Controller) initArtifactRoutes() {
	c.Group.POST("/artifacts/", c.CreateArtifact)
	c.Group.GET("/artifacts/", c.ListArtifacts)
	c.Group.GET("/artifacts/md5/:md5", c.GetArtifactByMD5)
	c.Group.GET("/artifacts/:id", c.GetArtifact)
	c.Group.PUT("/artifacts/:id", c.UpdateArtifact)
	c.Group.DELETE("/artifacts/:id", c.DeleteArtifact)
	c.Group.GET("/artifacts/:id/collections", c.ListArtifactCollections)
	c.Group.GET("/artifacts/:id/captions", c.ListArtifactCaptions)
}

// ArtifactListResponse wraps a page of artifacts with pagination metadata.
type ArtifactListResponse struct {
	Artifacts []datastore.Artifact `json:"artifacts"`
	Total     int64                `json:"total"`
	Skip      int                  `json:"skip"`
	Limit     int                  `json:"limit"`
}

// CreateArtifact handles POST /api/v2/artifacts/
func (c *Controller) CreateArtifact(ctx echo.Context) error {
	var artifact datastore.Artifact
	if err := ctx.Bind(&artifact); err != nil {
		return c.HandleError(ctx, err, "Invalid artifact payload", http.StatusBadRequest)
	}

	// Server-owned fields are never taken from the request body
	artifact.ID = ""
	artifact.AspectRatio = 0
	artifact.IsDeleted = false
	artifact.DeletedTime = nil

	if err := c.DS.CreateArtifact(&artifact); err != nil {
		return c.handleDSError(ctx, err, "Failed to create artifact")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact created", "artifact_id", artifact.ID, "md5", artifact.MD5)
	return ctx.JSON(http.StatusCreated, artifact)
}

// GetArtifact handles GET /api/v2/artifacts/:id
func (c *Controller) GetArtifact(ctx echo.Context) error {
	id := ctx.Param("id")

	artifact, err := c.DS.GetArtifact(id)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get artifact")
	}

	return ctx.JSON(http.StatusOK, artifact)
}

// GetArtifactByMD5 handles GET /api/v2/artifacts/md5/:md5
func (c *Controller) GetArtifactByMD5(ctx echo.Context) error {
	md5 := ctx.Param("md5")

	artifact, err := c.DS.GetArtifactByMD5(md5)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get artifact by md5")
	}

	return ctx.JSON(http.StatusOK, artifact)
}

// ListArtifacts handles GET /api/v2/artifacts/
func (c *Controller) ListArtifacts(ctx echo.Context) error {
	filter := datastore.ArtifactFilter{
		Skip:           queryInt(ctx, "skip", 0),
		Limit:          queryInt(ctx, "limit", 0),
		Format:         ctx.QueryParam("format"),
		MinWidth:       queryInt(ctx, "min_width", 0),
		MaxWidth:       queryInt(ctx, "max_width", 0),
		MinHeight:      queryInt(ctx, "min_height", 0),
		MaxHeight:      queryInt(ctx, "max_height", 0),
		IncludeDeleted: queryBool(ctx, "include_deleted"),
	}

	artifacts, total, err := c.DS.ListArtifacts(filter)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list artifacts")
	}

	return ctx.JSON(http.StatusOK, ArtifactListResponse{
		Artifacts: artifacts,
		Total:     total,
		Skip:      filter.Skip,
		Limit:     filter.Limit,
	})
}

// UpdateArtifact handles PUT /api/v2/artifacts/:id
func (c *Controller) UpdateArtifact(ctx echo.Context) error {
	id := ctx.Param("id")

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid artifact payload", http.StatusBadRequest)
	}

	artifact, err := c.DS.UpdateArtifact(id, updates)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to update artifact")
	}

	return ctx.JSON(http.StatusOK, artifact)
}

// DeleteArtifact handles DELETE /api/v2/artifacts/:id
func (c *Controller) DeleteArtifact(ctx echo.Context) error {
	id := ctx.Param("id")
	permanent := queryBool(ctx, "permanent")

	if err := c.DS.DeleteArtifact(id, permanent); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete artifact")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact deleted", "artifact_id", id, "permanent", permanent)
	return ctx.NoContent(http.StatusNoContent)
}

// ListArtifactCollections handles GET /api/v2/artifacts/:id/collections
func (c *Controller) ListArtifactCollections(ctx echo.Context) error {
	id := ctx.Param("id")
	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 0)

	collections, err := c.DS.ListArtifactCollections(id, skip, limit)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list artifact collections")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"artifact_id": id,
		"collections": collections,
	})
}

// ListArtifactCaptions handles GET /api/v2/artifacts/:id/captions
func (c *Controller) ListArtifactCaptions(ctx echo.Context) error {
	id := ctx.Param("id")
	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 0)

	captions, err := c.DS.ListArtifactCaptions(id, skip, limit)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list artifact captions")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"artifact_id": id,
		"captions":    captions,
	})
}

// queryInt parses an integer query parameter, returning fallback when absent or malformed.
func queryInt(ctx echo.Context, name string, fallback int) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryBool parses a boolean query parameter, defaulting to false.
func queryBool(ctx echo.Context, name string) bool {
	v, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return false
	}
	return v
}
