// internal/api/v2/collections.go
package api

import (
	"net/http"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/tmattila/artstore-go/internal/datastore"
)

// initCollectionRoutes registers collection CRUD and membership endpoints
func (c *Controller) initCollectionRoutes() {
	c.Group.POST("/collections/", c.CreateCollection)
	c.Group.GET("/collections/", c.ListCollections)
	c.Group.GET("/collections/:id", c.GetCollection)
	c.Group.PUT("/collections/:id", c.UpdateCollection)
	c.Group.DELETE("/collections/:id", c.DeleteCollection)
	c.Group.GET("/collections/:id/with-artifacts", c.GetCollectionWithArtifacts)
	c.Group.GET("/collections/:id/artifacts", c.ListCollectionArtifacts)
	c.Group.POST("/collections/:id/artifacts/batch", c.AddArtifactsToCollection)
	c.Group.POST("/collections/:id/artifacts/:artifact_id", c.AddArtifactToCollection)
	c.Group.DELETE("/collections/:id/artifacts/:artifact_id", c.RemoveArtifactFromCollection)
}

// CollectionListResponse wraps a page of collections with pagination metadata.
type CollectionListResponse struct {
	Collections []datastore.Collection `json:"collections"`
	Total       int64                  `json:"total"`
	Skip        int                    `json:"skip"`
	Limit       int                    `json:"limit"`
}

// CollectionWithArtifacts is a collection together with a page of its members.
type CollectionWithArtifacts struct {
	datastore.Collection
	Artifacts     []datastore.Artifact `json:"artifacts"`
	ArtifactTotal int64                `json:"artifact_total"`
}

// BatchArtifactsRequest is the body of the batch membership endpoint.
type BatchArtifactsRequest struct {
	ArtifactIDs []string `json:"artifact_ids"`
}

// CreateCollection handles POST /api/v2/collections/
func (c *Controller) CreateCollection(ctx echo.Context) error {
	var collection datastore.Collection
	if err := ctx.Bind(&collection); err != nil {
		return c.HandleError(ctx, err, "Invalid collection payload", http.StatusBadRequest)
	}

	collection.ID = ""
	collection.IsDeleted = false
	collection.DeletedTime = nil

	if err := c.DS.CreateCollection(&collection); err != nil {
		return c.handleDSError(ctx, err, "Failed to create collection")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Collection created", "collection_id", collection.ID, "name", collection.Name)
	return ctx.JSON(http.StatusCreated, collection)
}

// GetCollection handles GET /api/v2/collections/:id
func (c *Controller) GetCollection(ctx echo.Context) error {
	id := ctx.Param("id")

	collection, err := c.DS.GetCollection(id)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get collection")
	}

	return ctx.JSON(http.StatusOK, collection)
}

// GetCollectionWithArtifacts handles GET /api/v2/collections/:id/with-artifacts
func (c *Controller) GetCollectionWithArtifacts(ctx echo.Context) error {
	id := ctx.Param("id")
	limit := queryInt(ctx, "artifact_limit", 20)

	collection, err := c.DS.GetCollection(id)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get collection")
	}

	artifacts, total, err := c.DS.ListCollectionArtifacts(id, 0, limit)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list collection artifacts")
	}

	return ctx.JSON(http.StatusOK, CollectionWithArtifacts{
		Collection:    collection,
		Artifacts:     artifacts,
		ArtifactTotal: total,
	})
}

// ListCollections handles GET /api/v2/collections/
func (c *Controller) ListCollections(ctx echo.Context) error {
	filter := datastore.CollectionFilter{
		Skip:           queryInt(ctx, "skip", 0),
		Limit:          queryInt(ctx, "limit", 0),
		CreatedBy:      ctx.QueryParam("created_by"),
		IncludeDeleted: queryBool(ctx, "include_deleted"),
	}

	collections, total, err := c.DS.ListCollections(filter)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list collections")
	}

	return ctx.JSON(http.StatusOK, CollectionListResponse{
		Collections: collections,
		Total:       total,
		Skip:        filter.Skip,
		Limit:       filter.Limit,
	})
}

// UpdateCollection handles PUT /api/v2/collections/:id
func (c *Controller) UpdateCollection(ctx echo.Context) error {
	id := ctx.Param("id")

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid collection payload", http.StatusBadRequest)
	}

	collection, err := c.DS.UpdateCollection(id, updates)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to update collection")
	}

	return ctx.JSON(http.StatusOK, collection)
}

// DeleteCollection handles DELETE /api/v2/collections/:id
func (c *Controller) DeleteCollection(ctx echo.Context) error {
	id := ctx.Param("id")
	permanent := queryBool(ctx, "permanent")

	if err := c.DS.DeleteCollection(id, permanent); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete collection")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Collection deleted", "collection_id", id, "permanent", permanent)
	return ctx.NoContent(http.StatusNoContent)
}

// AddArtifactToCollection handles POST /api/v2/collections/:id/artifacts/:artifact_id
func (c *Controller) AddArtifactToCollection(ctx echo.Context) error {
	collectionID := ctx.Param("id")
	artifactID := ctx.Param("artifact_id")

	mapping, err := c.DS.AddArtifactToCollection(collectionID, artifactID)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to add artifact to collection")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact added to collection",
		"collection_id", collectionID, "artifact_id", artifactID)
	return ctx.JSON(http.StatusCreated, mapping)
}

// AddArtifactsToCollection handles POST /api/v2/collections/:id/artifacts/batch
func (c *Controller) AddArtifactsToCollection(ctx echo.Context) error {
	collectionID := ctx.Param("id")

	var req BatchArtifactsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid batch payload", http.StatusBadRequest)
	}
	if len(req.ArtifactIDs) == 0 {
		return c.HandleError(ctx, nil, "artifact_ids must not be empty", http.StatusBadRequest)
	}

	result, err := c.DS.AddArtifactsToCollection(collectionID, req.ArtifactIDs)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to add artifacts to collection")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifacts batch added to collection",
		"collection_id", collectionID,
		"added", result.AddedCount,
		"already_exists", result.AlreadyExistsCount,
		"not_found", result.NotFoundCount)
	return ctx.JSON(http.StatusOK, result)
}

// RemoveArtifactFromCollection handles DELETE /api/v2/collections/:id/artifacts/:artifact_id
func (c *Controller) RemoveArtifactFromCollection(ctx echo.Context) error {
	collectionID := ctx.Param("id")
	artifactID := ctx.Param("artifact_id")

	if err := c.DS.RemoveArtifactFromCollection(collectionID, artifactID); err != nil {
		return c.handleDSError(ctx, err, "Failed to remove artifact from collection")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Artifact removed from collection",
		"collection_id", collectionID, "artifact_id", artifactID)
	return ctx.NoContent(http.StatusNoContent)
}

// ListCollectionArtifacts handles GET /api/v2/collections/:id/artifacts
func (c *Controller) ListCollectionArtifacts(ctx echo.Context) error {
	collectionID := ctx.Param("id")
	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 0)

	artifacts, total, err := c.DS.ListCollectionArtifacts(collectionID, skip, limit)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list collection artifacts")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"collection_id": collectionID,
		"artifacts":     artifacts,
		"total":         total,
		"skip":          skip,
		"limit":         limit,
	})
}
