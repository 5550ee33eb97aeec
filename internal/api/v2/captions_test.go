package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tmattila/artstore-go/internal/datastore"
	"github.com/tmattila/artstore-go/internal/errors"
)

func TestCreateCaption(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateCaption", mock.AnythingOfType("*datastore.Caption")).
		Return(datastore.Caption{ID: "caption-1", CaptionType: "alt_text", Content: "a red barn"}, nil)

	body := `{"caption_type":"alt_text","content":"a red barn"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/captions/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateCaption(ctx))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got datastore.Caption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "caption-1", got.ID)

	mockDS.AssertExpectations(t)
}

func TestCreateCaptionMissingPreset(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateCaption", mock.AnythingOfType("*datastore.Caption")).
		Return(datastore.Caption{}, errors.NotFound("caption preset", "no-such-key"))

	body := `{"caption_type":"alt_text","content":"text","preset_key":"no-such-key"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/captions/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateCaption(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestGetCaptionByPresetKey(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	key := "style-a"
	mockDS.On("GetCaptionByPresetKey", key).
		Return(datastore.Caption{ID: "caption-1", PresetKey: &key}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/captions/preset/style-a", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetPath("/api/v2/captions/preset/:preset_key")
	ctx.SetParamNames("preset_key")
	ctx.SetParamValues(key)

	require.NoError(t, controller.GetCaptionByPresetKey(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestCreateCaptionPreset(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateCaptionPreset", mock.AnythingOfType("*datastore.CaptionPreset")).Return(nil)

	body := `{"preset_key":"style-a","config":{"model":"blip2","temperature":0.7}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/presets/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateCaptionPreset(ctx))
	assert.Equal(t, http.StatusCreated, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestCreateCaptionPresetMissingKey(t *testing.T) {
	e, _, controller := setupTestEnvironment(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/presets/", strings.NewReader(`{"config":{}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateCaptionPreset(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCaptionPresetDuplicate(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateCaptionPreset", mock.AnythingOfType("*datastore.CaptionPreset")).
		Return(errors.Conflict("caption preset %s already exists", "style-a"))

	req := httptest.NewRequest(http.MethodPost, "/api/v2/presets/", strings.NewReader(`{"preset_key":"style-a"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateCaptionPreset(ctx))
	assert.Equal(t, http.StatusConflict, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestCreateArtifactCaptionMap(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateArtifactCaptionMap", "artifact-1", "caption-1").
		Return(&datastore.ArtifactCaptionMap{ArtifactID: "artifact-1", CaptionID: "caption-1", AddedTime: 1000}, nil)

	body := `{"artifact_id":"artifact-1","caption_id":"caption-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/artifact-caption-maps/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateArtifactCaptionMap(ctx))
	assert.Equal(t, http.StatusCreated, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestCreateArtifactCaptionMapsBatch(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	pairs := []datastore.ArtifactCaptionPair{
		{ArtifactID: "artifact-1", CaptionID: "caption-1"},
		{ArtifactID: "missing", CaptionID: "caption-1"},
	}
	mockDS.On("CreateArtifactCaptionMaps", pairs).
		Return(datastore.BatchMapResult{
			Success:      false,
			CreatedCount: 1,
			Errors:       []string{"artifact not found: missing"},
		}, nil)

	body := `{"maps":[{"artifact_id":"artifact-1","caption_id":"caption-1"},{"artifact_id":"missing","caption_id":"caption-1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/artifact-caption-maps/batch", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateArtifactCaptionMaps(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var result datastore.BatchMapResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Len(t, result.Errors, 1)

	mockDS.AssertExpectations(t)
}

func TestDeleteArtifactCaptionMap(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("DeleteArtifactCaptionMap", "artifact-1", "caption-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/artifact-caption-maps/artifact-1/caption-1", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetPath("/api/v2/artifact-caption-maps/:artifact_id/:caption_id")
	ctx.SetParamNames("artifact_id", "caption_id")
	ctx.SetParamValues("artifact-1", "caption-1")

	require.NoError(t, controller.DeleteArtifactCaptionMap(ctx))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mockDS.AssertExpectations(t)
}
