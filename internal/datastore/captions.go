// captions.go: caption and caption preset operations, including the
// natural-key upsert rules
package datastore

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmattila/artstore-go/internal/errors"
)

var presetMutableFields = map[string]bool{
	"config":      true,
	"description": true,
	"created_by":  true,
}

var captionMutableFields = map[string]bool{
	"caption_type": true,
	"content":      true,
	"extra":        true,
}

// CreateCaptionPreset inserts a preset keyed by its natural key. An active
// preset with the same key is a conflict; a soft deleted one is revived in
// place with the new payload instead of creating a second row.
func (ds *DataStore) CreateCaptionPreset(preset *CaptionPreset) error {
	if preset.PresetKey == "" {
		return validationError("preset_key must not be empty", "preset_key", preset.PresetKey)
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var existing CaptionPreset
		err := tx.Where("preset_key = ?", preset.PresetKey).First(&existing).Error
		switch {
		case err == nil && !existing.IsDeleted:
			return conflictError("caption preset with key %s already exists", preset.PresetKey)
		case err == nil && existing.IsDeleted:
			// Revive the soft deleted row, same identity, fresh fields.
			updates := map[string]any{
				"config":       preset.Config,
				"description":  preset.Description,
				"created_by":   preset.CreatedBy,
				"created_time": epochNow(),
				"is_deleted":   false,
				"deleted_time": nil,
			}
			if err := serializeJSONFields(updates, "config"); err != nil {
				return err
			}
			if err := tx.Model(&CaptionPreset{}).Where("preset_key = ?", preset.PresetKey).
				Updates(updates).Error; err != nil {
				return dbError(err, "create_caption_preset", "preset_key", preset.PresetKey)
			}
			return tx.Where("preset_key = ?", preset.PresetKey).First(preset).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return dbError(err, "create_caption_preset", "preset_key", preset.PresetKey)
		}

		preset.CreatedTime = epochNow()
		preset.IsDeleted = false
		preset.DeletedTime = nil
		if err := tx.Create(preset).Error; err != nil {
			return dbError(err, "create_caption_preset", "preset_key", preset.PresetKey)
		}
		return nil
	})
}

// GetCaptionPreset retrieves an active preset by its natural key.
func (ds *DataStore) GetCaptionPreset(presetKey string) (CaptionPreset, error) {
	var preset CaptionPreset
	err := ds.DB.Where("preset_key = ? AND is_deleted = ?", presetKey, false).First(&preset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CaptionPreset{}, notFoundError("caption preset", presetKey)
		}
		return CaptionPreset{}, dbError(err, "get_caption_preset", "preset_key", presetKey)
	}
	return preset, nil
}

// ListCaptionPresets returns presets newest first with the total count.
func (ds *DataStore) ListCaptionPresets(filter PresetFilter) ([]CaptionPreset, int64, error) {
	skip, limit := normalizePagination(filter.Skip, filter.Limit)

	query := ds.DB.Model(&CaptionPreset{})
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_caption_presets")
	}

	var presets []CaptionPreset
	err := query.Order("created_time DESC").Offset(skip).Limit(limit).Find(&presets).Error
	if err != nil {
		return nil, 0, dbError(err, "list_caption_presets")
	}
	return presets, total, nil
}

// UpdateCaptionPreset applies a partial update to an active preset.
func (ds *DataStore) UpdateCaptionPreset(presetKey string, fields map[string]any) (CaptionPreset, error) {
	var updated CaptionPreset
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var preset CaptionPreset
		err := tx.Where("preset_key = ? AND is_deleted = ?", presetKey, false).First(&preset).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("caption preset", presetKey)
			}
			return dbError(err, "update_caption_preset", "preset_key", presetKey)
		}

		updates := filterFields(fields, presetMutableFields)
		if len(updates) == 0 {
			updated = preset
			return nil
		}
		if err := serializeJSONFields(updates, "config"); err != nil {
			return err
		}
		if err := tx.Model(&CaptionPreset{}).Where("preset_key = ?", presetKey).
			Updates(updates).Error; err != nil {
			return dbError(err, "update_caption_preset", "preset_key", presetKey)
		}
		return tx.Where("preset_key = ?", presetKey).First(&updated).Error
	})
	if err != nil {
		return CaptionPreset{}, err
	}
	return updated, nil
}

// DeleteCaptionPreset soft deletes a preset by default, freeing the key for a
// later revive; a permanent delete removes the row.
func (ds *DataStore) DeleteCaptionPreset(presetKey string, permanent bool) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var preset CaptionPreset
		if err := tx.Where("preset_key = ?", presetKey).First(&preset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("caption preset", presetKey)
			}
			return dbError(err, "delete_caption_preset", "preset_key", presetKey)
		}

		if permanent {
			if err := tx.Delete(&CaptionPreset{}, "preset_key = ?", presetKey).Error; err != nil {
				return dbError(err, "delete_caption_preset", "preset_key", presetKey)
			}
			return nil
		}

		updates := map[string]any{
			"is_deleted":   true,
			"deleted_time": epochNow(),
		}
		if err := tx.Model(&CaptionPreset{}).Where("preset_key = ?", presetKey).
			Updates(updates).Error; err != nil {
			return dbError(err, "delete_caption_preset", "preset_key", presetKey)
		}
		return nil
	})
}

// CreateCaption inserts a caption. When a preset key is given the preset must
// be active, and an existing active caption for that key is overwritten in
// place, last write wins, instead of creating a duplicate.
func (ds *DataStore) CreateCaption(caption *Caption) (Caption, error) {
	if caption.CaptionType == "" {
		return Caption{}, validationError("caption_type must not be empty", "caption_type", caption.CaptionType)
	}

	var result Caption
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if caption.PresetKey != nil {
			var preset CaptionPreset
			err := tx.Where("preset_key = ? AND is_deleted = ?", *caption.PresetKey, false).
				First(&preset).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundError("caption preset", *caption.PresetKey)
				}
				return dbError(err, "create_caption", "preset_key", *caption.PresetKey)
			}

			var existing Caption
			err = tx.Where("preset_key = ? AND is_deleted = ?", *caption.PresetKey, false).
				First(&existing).Error
			switch {
			case err == nil:
				// One preset, one current caption: overwrite the row in place.
				updates := map[string]any{
					"caption_type": caption.CaptionType,
					"content":      caption.Content,
					"extra":        caption.Extra,
					"upload_time":  epochNow(),
				}
				if err := serializeJSONFields(updates, "extra"); err != nil {
					return err
				}
				if err := tx.Model(&Caption{}).Where("id = ?", existing.ID).
					Updates(updates).Error; err != nil {
					return dbError(err, "create_caption", "caption_id", existing.ID)
				}
				return tx.Where("id = ?", existing.ID).First(&result).Error
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return dbError(err, "create_caption", "preset_key", *caption.PresetKey)
			}
		}

		if caption.ID == "" {
			caption.ID = uuid.NewString()
		}
		caption.UploadTime = epochNow()
		caption.IsDeleted = false
		caption.DeletedTime = nil
		if err := tx.Create(caption).Error; err != nil {
			return dbError(err, "create_caption", "caption_id", caption.ID)
		}
		result = *caption
		return nil
	})
	if err != nil {
		return Caption{}, err
	}
	return result, nil
}

// GetCaption retrieves an active caption by its id.
func (ds *DataStore) GetCaption(id string) (Caption, error) {
	var caption Caption
	err := ds.DB.Where("id = ? AND is_deleted = ?", id, false).First(&caption).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caption{}, notFoundError("caption", id)
		}
		return Caption{}, dbError(err, "get_caption", "caption_id", id)
	}
	return caption, nil
}

// GetCaptionByPresetKey retrieves the active caption referencing a preset key.
func (ds *DataStore) GetCaptionByPresetKey(presetKey string) (Caption, error) {
	var caption Caption
	err := ds.DB.Where("preset_key = ? AND is_deleted = ?", presetKey, false).First(&caption).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caption{}, notFoundError("caption", presetKey)
		}
		return Caption{}, dbError(err, "get_caption_by_preset_key", "preset_key", presetKey)
	}
	return caption, nil
}

// ListCaptions returns captions newest first with the total count.
func (ds *DataStore) ListCaptions(filter CaptionFilter) ([]Caption, int64, error) {
	skip, limit := normalizePagination(filter.Skip, filter.Limit)

	query := ds.DB.Model(&Caption{})
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.CaptionType != "" {
		query = query.Where("caption_type = ?", filter.CaptionType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_captions")
	}

	var captions []Caption
	err := query.Order("upload_time DESC").Offset(skip).Limit(limit).Find(&captions).Error
	if err != nil {
		return nil, 0, dbError(err, "list_captions")
	}
	return captions, total, nil
}

// UpdateCaption applies a partial update to an active caption.
func (ds *DataStore) UpdateCaption(id string, fields map[string]any) (Caption, error) {
	var updated Caption
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var caption Caption
		err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&caption).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("caption", id)
			}
			return dbError(err, "update_caption", "caption_id", id)
		}

		updates := filterFields(fields, captionMutableFields)
		if err := serializeJSONFields(updates, "extra"); err != nil {
			return err
		}
		updates["upload_time"] = epochNow()

		if err := tx.Model(&Caption{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "update_caption", "caption_id", id)
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return Caption{}, err
	}
	return updated, nil
}

// DeleteCaption soft deletes a caption by default; a permanent delete removes
// the row and its artifact associations.
func (ds *DataStore) DeleteCaption(id string, permanent bool) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var caption Caption
		if err := tx.Where("id = ?", id).First(&caption).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("caption", id)
			}
			return dbError(err, "delete_caption", "caption_id", id)
		}

		if permanent {
			if err := tx.Where("caption_id = ?", id).Delete(&ArtifactCaptionMap{}).Error; err != nil {
				return dbError(err, "delete_caption", "caption_id", id)
			}
			if err := tx.Delete(&Caption{}, "id = ?", id).Error; err != nil {
				return dbError(err, "delete_caption", "caption_id", id)
			}
			return nil
		}

		updates := map[string]any{
			"is_deleted":   true,
			"deleted_time": epochNow(),
		}
		if err := tx.Model(&Caption{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "delete_caption", "caption_id", id)
		}
		return nil
	})
}

// CreateArtifactCaptionMap associates one caption with one artifact.
func (ds *DataStore) CreateArtifactCaptionMap(artifactID, captionID string) (*ArtifactCaptionMap, error) {
	var mapping ArtifactCaptionMap
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := activeArtifactExists(tx, artifactID); err != nil {
			return err
		}
		if err := activeCaptionExists(tx, captionID); err != nil {
			return err
		}

		var existing ArtifactCaptionMap
		err := tx.Where("artifact_id = ? AND caption_id = ?", artifactID, captionID).
			First(&existing).Error
		switch {
		case err == nil:
			return conflictError("caption %s is already mapped to artifact %s", captionID, artifactID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return dbError(err, "create_artifact_caption_map", "artifact_id", artifactID)
		}

		mapping = ArtifactCaptionMap{
			ArtifactID: artifactID,
			CaptionID:  captionID,
			AddedTime:  epochNow(),
		}
		if err := tx.Create(&mapping).Error; err != nil {
			return dbError(err, "create_artifact_caption_map", "artifact_id", artifactID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateArtifactCaptionMaps creates a batch of associations in one
// transaction. Items failing validation are reported inline and do not abort
// the batch; the successful items commit together.
func (ds *DataStore) CreateArtifactCaptionMaps(pairs []ArtifactCaptionPair) (BatchMapResult, error) {
	result := BatchMapResult{Errors: []string{}}
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		for _, pair := range pairs {
			if err := activeArtifactExists(tx, pair.ArtifactID); err != nil {
				if errors.IsNotFound(err) {
					result.Errors = append(result.Errors, err.Error())
					continue
				}
				return err
			}
			if err := activeCaptionExists(tx, pair.CaptionID); err != nil {
				if errors.IsNotFound(err) {
					result.Errors = append(result.Errors, err.Error())
					continue
				}
				return err
			}

			var existing ArtifactCaptionMap
			err := tx.Where("artifact_id = ? AND caption_id = ?", pair.ArtifactID, pair.CaptionID).
				First(&existing).Error
			switch {
			case err == nil:
				result.SkippedCount++
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return dbError(err, "create_artifact_caption_maps", "artifact_id", pair.ArtifactID)
			}

			mapping := ArtifactCaptionMap{
				ArtifactID: pair.ArtifactID,
				CaptionID:  pair.CaptionID,
				AddedTime:  epochNow(),
			}
			if err := tx.Create(&mapping).Error; err != nil {
				return dbError(err, "create_artifact_caption_maps", "artifact_id", pair.ArtifactID)
			}
			result.CreatedCount++
		}
		return nil
	})
	if err != nil {
		return BatchMapResult{}, err
	}
	result.Success = len(result.Errors) == 0
	return result, nil
}

// DeleteArtifactCaptionMap removes one association row.
func (ds *DataStore) DeleteArtifactCaptionMap(artifactID, captionID string) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var mapping ArtifactCaptionMap
		err := tx.Where("artifact_id = ? AND caption_id = ?", artifactID, captionID).
			First(&mapping).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("artifact caption mapping", artifactID+"/"+captionID)
			}
			return dbError(err, "delete_artifact_caption_map", "artifact_id", artifactID)
		}

		if err := tx.Where("artifact_id = ? AND caption_id = ?", artifactID, captionID).
			Delete(&ArtifactCaptionMap{}).Error; err != nil {
			return dbError(err, "delete_artifact_caption_map", "artifact_id", artifactID)
		}
		return nil
	})
}

// ListArtifactCaptions returns the active captions mapped to an artifact.
func (ds *DataStore) ListArtifactCaptions(artifactID string, skip, limit int) ([]Caption, error) {
	if err := artifactExists(ds.DB, artifactID); err != nil {
		return nil, err
	}

	skip, limit = normalizePagination(skip, limit)

	var captions []Caption
	err := ds.DB.Model(&Caption{}).
		Joins("JOIN artifact_caption_maps ON artifact_caption_maps.caption_id = captions.id").
		Where("artifact_caption_maps.artifact_id = ? AND captions.is_deleted = ?", artifactID, false).
		Order("artifact_caption_maps.added_time DESC").
		Offset(skip).Limit(limit).
		Find(&captions).Error
	if err != nil {
		return nil, dbError(err, "list_artifact_captions", "artifact_id", artifactID)
	}
	return captions, nil
}

// ListCaptionArtifacts returns the active artifacts a caption is mapped to.
func (ds *DataStore) ListCaptionArtifacts(captionID string, skip, limit int) ([]Artifact, error) {
	if err := activeCaptionExists(ds.DB, captionID); err != nil {
		return nil, err
	}

	skip, limit = normalizePagination(skip, limit)

	var artifacts []Artifact
	err := ds.DB.Model(&Artifact{}).
		Joins("JOIN artifact_caption_maps ON artifact_caption_maps.artifact_id = artifacts.id").
		Where("artifact_caption_maps.caption_id = ? AND artifacts.is_deleted = ?", captionID, false).
		Order("artifact_caption_maps.added_time DESC").
		Offset(skip).Limit(limit).
		Find(&artifacts).Error
	if err != nil {
		return nil, dbError(err, "list_caption_artifacts", "caption_id", captionID)
	}
	return artifacts, nil
}

// activeCaptionExists verifies the caption exists and is not soft deleted.
func activeCaptionExists(tx *gorm.DB, id string) error {
	var count int64
	err := tx.Model(&Caption{}).Where("id = ? AND is_deleted = ?", id, false).Count(&count).Error
	if err != nil {
		return dbError(err, "caption_exists", "caption_id", id)
	}
	if count == 0 {
		return notFoundError("caption", id)
	}
	return nil
}
