package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmattila/artstore-go/internal/errors"
)

func createTestPreset(t *testing.T, store *SQLiteStore, key string) CaptionPreset {
	t.Helper()

	preset := CaptionPreset{
		PresetKey:   key,
		Config:      map[string]any{"model": "blip2", "max_tokens": float64(64)},
		Description: "test preset",
	}
	require.NoError(t, store.CreateCaptionPreset(&preset))
	return preset
}

func strPtr(s string) *string { return &s }

func TestCreatePresetDuplicateActiveKeyConflicts(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")

	dup := CaptionPreset{PresetKey: "blip2-default"}
	err := store.CreateCaptionPreset(&dup)
	assert.True(t, errors.IsConflict(err))
}

func TestCreatePresetRevivesSoftDeletedRow(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")
	require.NoError(t, store.DeleteCaptionPreset("blip2-default", false))

	revived := CaptionPreset{
		PresetKey:   "blip2-default",
		Config:      map[string]any{"model": "blip2-xl"},
		Description: "revived",
	}
	require.NoError(t, store.CreateCaptionPreset(&revived))

	got, err := store.GetCaptionPreset("blip2-default")
	require.NoError(t, err)
	assert.Equal(t, "revived", got.Description)
	assert.Equal(t, "blip2-xl", got.Config["model"])
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.DeletedTime)

	// Still exactly one row for the key.
	var count int64
	require.NoError(t, store.DB.Model(&CaptionPreset{}).
		Where("preset_key = ?", "blip2-default").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetPresetExcludesSoftDeleted(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")
	require.NoError(t, store.DeleteCaptionPreset("blip2-default", false))

	_, err := store.GetCaptionPreset("blip2-default")
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateCaptionWithoutPreset(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	caption, err := store.CreateCaption(&Caption{
		CaptionType: "manual",
		Content:     "a red bicycle leaning on a wall",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, caption.ID)
	assert.NotZero(t, caption.UploadTime)
}

func TestCreateCaptionRequiresActivePreset(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))

	_, err := store.CreateCaption(&Caption{
		CaptionType: "auto",
		PresetKey:   strPtr("missing"),
	})
	assert.True(t, errors.IsNotFound(err))

	createTestPreset(t, store, "blip2-default")
	require.NoError(t, store.DeleteCaptionPreset("blip2-default", false))
	_, err = store.CreateCaption(&Caption{
		CaptionType: "auto",
		PresetKey:   strPtr("blip2-default"),
	})
	assert.True(t, errors.IsNotFound(err), "soft deleted preset does not satisfy the reference")
}

func TestCreateCaptionOverwritesExistingForSamePreset(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")

	first, err := store.CreateCaption(&Caption{
		CaptionType: "auto",
		PresetKey:   strPtr("blip2-default"),
		Content:     "first pass",
	})
	require.NoError(t, err)

	second, err := store.CreateCaption(&Caption{
		CaptionType: "auto",
		PresetKey:   strPtr("blip2-default"),
		Content:     "second pass",
		Extra:       map[string]any{"score": "0.91"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same row identity, last write wins")
	assert.Equal(t, "second pass", second.Content)
	assert.Equal(t, "0.91", second.Extra["score"])

	var count int64
	require.NoError(t, store.DB.Model(&Caption{}).
		Where("preset_key = ?", "blip2-default").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetCaptionByPresetKeyExcludesSoftDeleted(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")
	caption, err := store.CreateCaption(&Caption{
		CaptionType: "auto",
		PresetKey:   strPtr("blip2-default"),
		Content:     "text",
	})
	require.NoError(t, err)

	got, err := store.GetCaptionByPresetKey("blip2-default")
	require.NoError(t, err)
	assert.Equal(t, caption.ID, got.ID)

	require.NoError(t, store.DeleteCaption(caption.ID, false))
	_, err = store.GetCaptionByPresetKey("blip2-default")
	assert.True(t, errors.IsNotFound(err))
}

func TestArtifactCaptionMapLifecycle(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	artifact := createTestArtifact(t, store, md5For('a'))
	caption, err := store.CreateCaption(&Caption{CaptionType: "manual", Content: "x"})
	require.NoError(t, err)

	mapping, err := store.CreateArtifactCaptionMap(artifact.ID, caption.ID)
	require.NoError(t, err)
	assert.NotZero(t, mapping.AddedTime)

	_, err = store.CreateArtifactCaptionMap(artifact.ID, caption.ID)
	assert.True(t, errors.IsConflict(err))

	captions, err := store.ListArtifactCaptions(artifact.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Equal(t, caption.ID, captions[0].ID)

	artifacts, err := store.ListCaptionArtifacts(caption.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, artifact.ID, artifacts[0].ID)

	require.NoError(t, store.DeleteArtifactCaptionMap(artifact.ID, caption.ID))
	err = store.DeleteArtifactCaptionMap(artifact.ID, caption.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestBatchCreateArtifactCaptionMaps(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	artifact := createTestArtifact(t, store, md5For('a'))
	caption, err := store.CreateCaption(&Caption{CaptionType: "manual", Content: "x"})
	require.NoError(t, err)
	other, err := store.CreateCaption(&Caption{CaptionType: "manual", Content: "y"})
	require.NoError(t, err)

	// Pre-existing mapping for the skip case.
	_, err = store.CreateArtifactCaptionMap(artifact.ID, caption.ID)
	require.NoError(t, err)

	result, err := store.CreateArtifactCaptionMaps([]ArtifactCaptionPair{
		{ArtifactID: artifact.ID, CaptionID: caption.ID},  // duplicate -> skipped
		{ArtifactID: artifact.ID, CaptionID: other.ID},    // new -> created
		{ArtifactID: "missing", CaptionID: caption.ID},    // bad artifact -> error
		{ArtifactID: artifact.ID, CaptionID: "missing"},   // bad caption -> error
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Len(t, result.Errors, 2)
	assert.False(t, result.Success)

	// The created item committed even though other items failed.
	var count int64
	require.NoError(t, store.DB.Model(&ArtifactCaptionMap{}).
		Where("artifact_id = ?", artifact.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpdateCaptionPreset(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")

	updated, err := store.UpdateCaptionPreset("blip2-default", map[string]any{
		"description": "tuned",
		"preset_key":  "renamed", // natural key is identity, not mutable
	})
	require.NoError(t, err)
	assert.Equal(t, "tuned", updated.Description)
	assert.Equal(t, "blip2-default", updated.PresetKey)
}

func TestUpdateCaptionPresetWritesConfigMap(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	createTestPreset(t, store, "blip2-default")

	updated, err := store.UpdateCaptionPreset("blip2-default", map[string]any{
		"config": map[string]any{"model": "blip2-xl", "temperature": 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, "blip2-xl", updated.Config["model"])
	assert.Equal(t, 0.2, updated.Config["temperature"])

	got, err := store.GetCaptionPreset("blip2-default")
	require.NoError(t, err)
	assert.Equal(t, "blip2-xl", got.Config["model"])
}

func TestUpdateCaptionWritesExtraMap(t *testing.T) {
	t.Parallel()

	store := createDatabase(t, createTestSettings(t))
	caption, err := store.CreateCaption(&Caption{CaptionType: "manual", Content: "x"})
	require.NoError(t, err)

	updated, err := store.UpdateCaption(caption.ID, map[string]any{
		"extra": map[string]any{"source": "reviewer", "confidence": 0.75},
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", updated.Extra["source"])
	assert.Equal(t, 0.75, updated.Extra["confidence"])
}
