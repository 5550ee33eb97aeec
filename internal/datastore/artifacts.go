// artifacts.go: artifact CRUD operations
package datastore

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmattila/artstore-go/internal/errors"
)

// artifactMutableFields is the whitelist of columns a partial update may touch.
// Everything server-derived (id, timestamps, aspect ratio, soft delete state)
// and the md5 uniqueness anchor stay out of it.
var artifactMutableFields = map[string]bool{
	"upload_user":     true,
	"children_id":     true,
	"width":           true,
	"height":          true,
	"size":            true,
	"pixels":          true,
	"format":          true,
	"has_alpha":       true,
	"local_path":      true,
	"origin_name":     true,
	"created_time":    true,
	"original_path":   true,
	"size_2048x_path": true,
	"size_1024x_path": true,
	"size_256x_path":  true,
}

// CreateArtifact inserts a new artifact. Creation is rejected with a conflict
// when the md5 hash already exists in any row, soft deleted rows included.
// The id, timestamps and aspect ratio are filled in here.
func (ds *DataStore) CreateArtifact(artifact *Artifact) error {
	if artifact.Width <= 0 {
		return validationError("width must be a positive integer", "width", artifact.Width)
	}
	if artifact.Height <= 0 {
		return validationError("height must be a positive integer", "height", artifact.Height)
	}
	if len(artifact.MD5) != 32 {
		return validationError("md5 must be a 32 character hex string", "md5", artifact.MD5)
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var existing Artifact
		err := tx.Where("md5 = ?", artifact.MD5).First(&existing).Error
		switch {
		case err == nil:
			return conflictError("artifact with md5 %s already exists: %s", artifact.MD5, existing.ID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return dbError(err, "create_artifact", "md5", artifact.MD5)
		}

		now := epochNow()
		if artifact.ID == "" {
			artifact.ID = uuid.NewString()
		}
		artifact.UploadTime = now
		artifact.UpdateTime = now
		if artifact.CreatedTime == 0 {
			artifact.CreatedTime = now
		}
		artifact.AspectRatio = float64(artifact.Width) / float64(artifact.Height)
		artifact.IsDeleted = false
		artifact.DeletedTime = nil

		if err := tx.Create(artifact).Error; err != nil {
			return dbError(err, "create_artifact", "artifact_id", artifact.ID)
		}
		return nil
	})
}

// GetArtifact retrieves an artifact by its id. Soft deleted rows are returned
// as well, the surrogate id stays addressable after a soft delete.
func (ds *DataStore) GetArtifact(id string) (Artifact, error) {
	var artifact Artifact
	if err := ds.DB.Where("id = ?", id).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Artifact{}, notFoundError("artifact", id)
		}
		return Artifact{}, dbError(err, "get_artifact", "artifact_id", id)
	}
	return artifact, nil
}

// GetArtifactByMD5 retrieves an active artifact by its content hash.
func (ds *DataStore) GetArtifactByMD5(md5 string) (Artifact, error) {
	var artifact Artifact
	err := ds.DB.Where("md5 = ? AND is_deleted = ?", md5, false).First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Artifact{}, notFoundError("artifact", md5)
		}
		return Artifact{}, dbError(err, "get_artifact_by_md5", "md5", md5)
	}
	return artifact, nil
}

// ListArtifacts returns artifacts matching the filter, newest first, together
// with the total count of matching rows.
func (ds *DataStore) ListArtifacts(filter ArtifactFilter) ([]Artifact, int64, error) {
	skip, limit := normalizePagination(filter.Skip, filter.Limit)

	query := ds.DB.Model(&Artifact{})
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.Format != "" {
		query = query.Where("format = ?", filter.Format)
	}
	if filter.MinWidth > 0 {
		query = query.Where("width >= ?", filter.MinWidth)
	}
	if filter.MaxWidth > 0 {
		query = query.Where("width <= ?", filter.MaxWidth)
	}
	if filter.MinHeight > 0 {
		query = query.Where("height >= ?", filter.MinHeight)
	}
	if filter.MaxHeight > 0 {
		query = query.Where("height <= ?", filter.MaxHeight)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_artifacts")
	}

	var artifacts []Artifact
	err := query.Order("upload_time DESC").Offset(skip).Limit(limit).Find(&artifacts).Error
	if err != nil {
		return nil, 0, dbError(err, "list_artifacts")
	}
	return artifacts, total, nil
}

// UpdateArtifact applies a partial update to an artifact. Only whitelisted
// columns are written; aspect ratio is recomputed when dimensions change and
// the update timestamp is always refreshed.
func (ds *DataStore) UpdateArtifact(id string, fields map[string]any) (Artifact, error) {
	var updated Artifact
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var artifact Artifact
		if err := tx.Where("id = ?", id).First(&artifact).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("artifact", id)
			}
			return dbError(err, "update_artifact", "artifact_id", id)
		}

		updates := filterFields(fields, artifactMutableFields)
		if err := serializeJSONFields(updates, "children_id"); err != nil {
			return err
		}

		if w, ok := numericField(updates, "width"); ok && w <= 0 {
			return validationError("width must be a positive integer", "width", w)
		}
		if h, ok := numericField(updates, "height"); ok && h <= 0 {
			return validationError("height must be a positive integer", "height", h)
		}

		// Recompute the derived ratio when either dimension changes.
		width := artifact.Width
		height := artifact.Height
		if w, ok := numericField(updates, "width"); ok {
			width = int(w)
		}
		if h, ok := numericField(updates, "height"); ok {
			height = int(h)
		}
		if width != artifact.Width || height != artifact.Height {
			updates["aspect_ratio"] = float64(width) / float64(height)
		}

		updates["update_time"] = epochNow()

		if err := tx.Model(&Artifact{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "update_artifact", "artifact_id", id)
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return Artifact{}, err
	}
	return updated, nil
}

// DeleteArtifact soft deletes an artifact by default. A permanent delete
// removes the row together with its association rows, and any collection
// whose cover pointed at the artifact gets a replacement cover.
func (ds *DataStore) DeleteArtifact(id string, permanent bool) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var artifact Artifact
		if err := tx.Where("id = ?", id).First(&artifact).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("artifact", id)
			}
			return dbError(err, "delete_artifact", "artifact_id", id)
		}

		if permanent {
			var covered []Collection
			if err := tx.Where("cover_artifact_id = ?", id).Find(&covered).Error; err != nil {
				return dbError(err, "delete_artifact", "artifact_id", id)
			}

			// Remove association rows explicitly, not every backend enforces
			// the cascade the same way.
			if err := tx.Where("artifact_id = ?", id).Delete(&ArtifactCollectionMap{}).Error; err != nil {
				return dbError(err, "delete_artifact", "artifact_id", id)
			}
			if err := tx.Where("artifact_id = ?", id).Delete(&ArtifactCaptionMap{}).Error; err != nil {
				return dbError(err, "delete_artifact", "artifact_id", id)
			}

			// Collections that used this artifact as cover promote the most
			// recently added remaining member, or clear the cover entirely.
			for _, collection := range covered {
				var successor ArtifactCollectionMap
				err := tx.Where("collection_id = ?", collection.ID).
					Order("added_time DESC").
					First(&successor).Error
				switch {
				case err == nil:
					if err := setCollectionCover(tx, collection.ID, &successor.ArtifactID); err != nil {
						return err
					}
				case errors.Is(err, gorm.ErrRecordNotFound):
					if err := setCollectionCover(tx, collection.ID, nil); err != nil {
						return err
					}
				default:
					return dbError(err, "delete_artifact", "collection_id", collection.ID)
				}
			}

			if err := tx.Delete(&Artifact{}, "id = ?", id).Error; err != nil {
				return dbError(err, "delete_artifact", "artifact_id", id)
			}
			return nil
		}

		now := epochNow()
		updates := map[string]any{
			"is_deleted":   true,
			"deleted_time": now,
			"update_time":  now,
		}
		if err := tx.Model(&Artifact{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "delete_artifact", "artifact_id", id)
		}
		return nil
	})
}

// filterFields returns the subset of fields whose column names appear in the
// whitelist. Unknown and server-derived fields are dropped silently.
func filterFields(fields map[string]any, allowed map[string]bool) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		if allowed[key] {
			filtered[key] = value
		}
	}
	return filtered
}

// serializeJSONFields marshals serializer-backed columns ahead of a map-based
// Updates call. gorm runs the json serializer only on struct writes; a raw map
// or slice left in the update map reaches the SQL driver unconverted and the
// write fails.
func serializeJSONFields(fields map[string]any, columns ...string) error {
	for _, column := range columns {
		value, ok := fields[column]
		if !ok || value == nil {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return validationError(column+" is not a serializable value", column, value)
		}
		fields[column] = string(raw)
	}
	return nil
}

// numericField reads an integer-valued update field regardless of whether it
// arrived as a Go int or a JSON float64.
func numericField(fields map[string]any, key string) (float64, bool) {
	value, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
