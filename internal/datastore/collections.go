// collections.go: collection CRUD, membership and the cover consistency rule
package datastore

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmattila/artstore-go/internal/errors"
)

var collectionMutableFields = map[string]bool{
	"name":        true,
	"description": true,
	"created_by":  true,
}

// CreateCollection inserts a new collection with server assigned id and timestamps.
func (ds *DataStore) CreateCollection(collection *Collection) error {
	if collection.Name == "" {
		return validationError("name must not be empty", "name", collection.Name)
	}

	now := epochNow()
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	collection.CreatedTime = now
	collection.UpdatedTime = now
	collection.IsDeleted = false
	collection.DeletedTime = nil
	// The cover is maintained by membership changes, never set at creation.
	collection.CoverArtifactID = nil

	if err := ds.DB.Create(collection).Error; err != nil {
		return dbError(err, "create_collection", "collection_id", collection.ID)
	}
	return nil
}

// GetCollection retrieves an active collection by its id.
func (ds *DataStore) GetCollection(id string) (Collection, error) {
	var collection Collection
	err := ds.DB.Where("id = ? AND is_deleted = ?", id, false).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Collection{}, notFoundError("collection", id)
		}
		return Collection{}, dbError(err, "get_collection", "collection_id", id)
	}
	return collection, nil
}

// ListCollections returns collections matching the filter, newest first.
func (ds *DataStore) ListCollections(filter CollectionFilter) ([]Collection, int64, error) {
	skip, limit := normalizePagination(filter.Skip, filter.Limit)

	query := ds.DB.Model(&Collection{})
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_collections")
	}

	var collections []Collection
	err := query.Order("created_time DESC").Offset(skip).Limit(limit).Find(&collections).Error
	if err != nil {
		return nil, 0, dbError(err, "list_collections")
	}
	return collections, total, nil
}

// UpdateCollection applies a partial update; the cover reference and deletion
// state are managed elsewhere and silently dropped from the payload.
func (ds *DataStore) UpdateCollection(id string, fields map[string]any) (Collection, error) {
	var updated Collection
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var collection Collection
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&collection).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("collection", id)
			}
			return dbError(err, "update_collection", "collection_id", id)
		}

		updates := filterFields(fields, collectionMutableFields)
		updates["updated_time"] = epochNow()

		if err := tx.Model(&Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "update_collection", "collection_id", id)
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return Collection{}, err
	}
	return updated, nil
}

// DeleteCollection soft deletes a collection by default; a permanent delete
// removes the row and its membership rows.
func (ds *DataStore) DeleteCollection(id string, permanent bool) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var collection Collection
		if err := tx.Where("id = ?", id).First(&collection).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("collection", id)
			}
			return dbError(err, "delete_collection", "collection_id", id)
		}

		if permanent {
			if err := tx.Where("collection_id = ?", id).Delete(&ArtifactCollectionMap{}).Error; err != nil {
				return dbError(err, "delete_collection", "collection_id", id)
			}
			if err := tx.Delete(&Collection{}, "id = ?", id).Error; err != nil {
				return dbError(err, "delete_collection", "collection_id", id)
			}
			return nil
		}

		now := epochNow()
		updates := map[string]any{
			"is_deleted":   true,
			"deleted_time": now,
			"updated_time": now,
		}
		if err := tx.Model(&Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "delete_collection", "collection_id", id)
		}
		return nil
	})
}

// AddArtifactToCollection creates a membership row. When the collection has no
// cover yet, the added artifact becomes the cover in the same transaction.
func (ds *DataStore) AddArtifactToCollection(collectionID, artifactID string) (*ArtifactCollectionMap, error) {
	var mapping ArtifactCollectionMap
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		collection, err := activeCollection(tx, collectionID)
		if err != nil {
			return err
		}
		if err := activeArtifactExists(tx, artifactID); err != nil {
			return err
		}

		var existing ArtifactCollectionMap
		err = tx.Where("artifact_id = ? AND collection_id = ?", artifactID, collectionID).
			First(&existing).Error
		switch {
		case err == nil:
			return conflictError("artifact %s is already in collection %s", artifactID, collectionID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return dbError(err, "add_artifact_to_collection", "collection_id", collectionID)
		}

		mapping = ArtifactCollectionMap{
			ArtifactID:   artifactID,
			CollectionID: collectionID,
			AddedTime:    epochNow(),
		}
		if err := tx.Create(&mapping).Error; err != nil {
			return dbError(err, "add_artifact_to_collection", "collection_id", collectionID)
		}

		if collection.CoverArtifactID == nil {
			return setCollectionCover(tx, collectionID, &artifactID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// AddArtifactsToCollection adds a batch of artifacts in one transaction.
// Each id is classified independently; a missing artifact does not abort the
// batch. Only the first successfully added artifact can become the cover.
func (ds *DataStore) AddArtifactsToCollection(collectionID string, artifactIDs []string) (BatchAddResult, error) {
	var result BatchAddResult
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		collection, err := activeCollection(tx, collectionID)
		if err != nil {
			return err
		}
		hasCover := collection.CoverArtifactID != nil

		for _, artifactID := range artifactIDs {
			if err := activeArtifactExists(tx, artifactID); err != nil {
				if errors.IsNotFound(err) {
					result.NotFoundCount++
					continue
				}
				return err
			}

			var existing ArtifactCollectionMap
			err := tx.Where("artifact_id = ? AND collection_id = ?", artifactID, collectionID).
				First(&existing).Error
			switch {
			case err == nil:
				result.AlreadyExistsCount++
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return dbError(err, "add_artifacts_to_collection", "collection_id", collectionID)
			}

			mapping := ArtifactCollectionMap{
				ArtifactID:   artifactID,
				CollectionID: collectionID,
				AddedTime:    epochNow(),
			}
			if err := tx.Create(&mapping).Error; err != nil {
				return dbError(err, "add_artifacts_to_collection", "collection_id", collectionID)
			}
			result.AddedCount++

			if !hasCover {
				if err := setCollectionCover(tx, collectionID, &mapping.ArtifactID); err != nil {
					return err
				}
				hasCover = true
			}
		}
		return nil
	})
	if err != nil {
		return BatchAddResult{}, err
	}
	return result, nil
}

// RemoveArtifactFromCollection deletes a membership row. When the removed
// artifact was the cover, the most recently added remaining member takes its
// place; with no members left the cover is cleared.
func (ds *DataStore) RemoveArtifactFromCollection(collectionID, artifactID string) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		collection, err := activeCollection(tx, collectionID)
		if err != nil {
			return err
		}

		var mapping ArtifactCollectionMap
		err = tx.Where("artifact_id = ? AND collection_id = ?", artifactID, collectionID).
			First(&mapping).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("collection membership", artifactID)
			}
			return dbError(err, "remove_artifact_from_collection", "collection_id", collectionID)
		}

		if err := tx.Where("artifact_id = ? AND collection_id = ?", artifactID, collectionID).
			Delete(&ArtifactCollectionMap{}).Error; err != nil {
			return dbError(err, "remove_artifact_from_collection", "collection_id", collectionID)
		}

		wasCover := collection.CoverArtifactID != nil && *collection.CoverArtifactID == artifactID
		if !wasCover {
			return nil
		}

		var successor ArtifactCollectionMap
		err = tx.Where("collection_id = ?", collectionID).
			Order("added_time DESC").
			First(&successor).Error
		switch {
		case err == nil:
			return setCollectionCover(tx, collectionID, &successor.ArtifactID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return setCollectionCover(tx, collectionID, nil)
		default:
			return dbError(err, "remove_artifact_from_collection", "collection_id", collectionID)
		}
	})
}

// ListCollectionArtifacts returns the active artifacts in a collection,
// most recently added first, with the total membership count.
func (ds *DataStore) ListCollectionArtifacts(collectionID string, skip, limit int) ([]Artifact, int64, error) {
	if _, err := activeCollection(ds.DB, collectionID); err != nil {
		return nil, 0, err
	}

	skip, limit = normalizePagination(skip, limit)

	base := ds.DB.Model(&Artifact{}).
		Joins("JOIN artifact_collection_maps ON artifact_collection_maps.artifact_id = artifacts.id").
		Where("artifact_collection_maps.collection_id = ? AND artifacts.is_deleted = ?", collectionID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_collection_artifacts", "collection_id", collectionID)
	}

	var artifacts []Artifact
	err := base.Order("artifact_collection_maps.added_time DESC").
		Offset(skip).Limit(limit).
		Find(&artifacts).Error
	if err != nil {
		return nil, 0, dbError(err, "list_collection_artifacts", "collection_id", collectionID)
	}
	return artifacts, total, nil
}

// ListArtifactCollections returns the active collections containing an
// artifact, ordered alphabetically by name.
func (ds *DataStore) ListArtifactCollections(artifactID string, skip, limit int) ([]Collection, error) {
	if err := artifactExists(ds.DB, artifactID); err != nil {
		return nil, err
	}

	skip, limit = normalizePagination(skip, limit)

	var collections []Collection
	err := ds.DB.Model(&Collection{}).
		Joins("JOIN artifact_collection_maps ON artifact_collection_maps.collection_id = collections.id").
		Where("artifact_collection_maps.artifact_id = ? AND collections.is_deleted = ?", artifactID, false).
		Order("collections.name ASC").
		Offset(skip).Limit(limit).
		Find(&collections).Error
	if err != nil {
		return nil, dbError(err, "list_artifact_collections", "artifact_id", artifactID)
	}
	return collections, nil
}

// activeCollection fetches a collection that exists and is not soft deleted.
func activeCollection(tx *gorm.DB, id string) (Collection, error) {
	var collection Collection
	err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Collection{}, notFoundError("collection", id)
		}
		return Collection{}, dbError(err, "get_collection", "collection_id", id)
	}
	return collection, nil
}

// activeArtifactExists verifies the artifact exists and is not soft deleted.
func activeArtifactExists(tx *gorm.DB, id string) error {
	var count int64
	err := tx.Model(&Artifact{}).Where("id = ? AND is_deleted = ?", id, false).Count(&count).Error
	if err != nil {
		return dbError(err, "artifact_exists", "artifact_id", id)
	}
	if count == 0 {
		return notFoundError("artifact", id)
	}
	return nil
}

// artifactExists verifies the artifact row exists, deleted or not.
func artifactExists(tx *gorm.DB, id string) error {
	var count int64
	err := tx.Model(&Artifact{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return dbError(err, "artifact_exists", "artifact_id", id)
	}
	if count == 0 {
		return notFoundError("artifact", id)
	}
	return nil
}

// setCollectionCover updates the cover reference and refreshes the update
// timestamp in one statement so the two can never diverge.
func setCollectionCover(tx *gorm.DB, collectionID string, artifactID *string) error {
	updates := map[string]any{
		"cover_artifact_id": artifactID,
		"updated_time":      epochNow(),
	}
	if err := tx.Model(&Collection{}).Where("id = ?", collectionID).Updates(updates).Error; err != nil {
		return dbError(err, "set_collection_cover", "collection_id", collectionID)
	}
	return nil
}
