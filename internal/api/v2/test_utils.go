// test_utils.go: Package api provides shared test utilities for API v2 tests.

package api

import (
	"log"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/tmattila/artstore-go/internal/conf"
	"github.com/tmattila/artstore-go/internal/datastore"
)

// MockDataStore implements the datastore.Interface for testing.
// This is a shared implementation that can be used across all test files.
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) CreateArtifact(artifact *datastore.Artifact) error {
	args := m.Called(artifact)
	return args.Error(0)
}

func (m *MockDataStore) GetArtifact(id string) (datastore.Artifact, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.Artifact), args.Error(1)
}

func (m *MockDataStore) GetArtifactByMD5(md5 string) (datastore.Artifact, error) {
	args := m.Called(md5)
	return args.Get(0).(datastore.Artifact), args.Error(1)
}

func (m *MockDataStore) ListArtifacts(filter datastore.ArtifactFilter) ([]datastore.Artifact, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]datastore.Artifact), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateArtifact(id string, fields map[string]any) (datastore.Artifact, error) {
	args := m.Called(id, fields)
	return args.Get(0).(datastore.Artifact), args.Error(1)
}

func (m *MockDataStore) DeleteArtifact(id string, permanent bool) error {
	args := m.Called(id, permanent)
	return args.Error(0)
}

func (m *MockDataStore) CreateCollection(collection *datastore.Collection) error {
	args := m.Called(collection)
	return args.Error(0)
}

func (m *MockDataStore) GetCollection(id string) (datastore.Collection, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.Collection), args.Error(1)
}

func (m *MockDataStore) ListCollections(filter datastore.CollectionFilter) ([]datastore.Collection, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]datastore.Collection), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateCollection(id string, fields map[string]any) (datastore.Collection, error) {
	args := m.Called(id, fields)
	return args.Get(0).(datastore.Collection), args.Error(1)
}

func (m *MockDataStore) DeleteCollection(id string, permanent bool) error {
	args := m.Called(id, permanent)
	return args.Error(0)
}

func (m *MockDataStore) AddArtifactToCollection(collectionID, artifactID string) (*datastore.ArtifactCollectionMap, error) {
	args := m.Called(collectionID, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.ArtifactCollectionMap), args.Error(1)
}

func (m *MockDataStore) AddArtifactsToCollection(collectionID string, artifactIDs []string) (datastore.BatchAddResult, error) {
	args := m.Called(collectionID, artifactIDs)
	return args.Get(0).(datastore.BatchAddResult), args.Error(1)
}

func (m *MockDataStore) RemoveArtifactFromCollection(collectionID, artifactID string) error {
	args := m.Called(collectionID, artifactID)
	return args.Error(0)
}

func (m *MockDataStore) ListCollectionArtifacts(collectionID string, skip, limit int) ([]datastore.Artifact, int64, error) {
	args := m.Called(collectionID, skip, limit)
	return args.Get(0).([]datastore.Artifact), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) ListArtifactCollections(artifactID string, skip, limit int) ([]datastore.Collection, error) {
	args := m.Called(artifactID, skip, limit)
	return args.Get(0).([]datastore.Collection), args.Error(1)
}

func (m *MockDataStore) CreateCaptionPreset(preset *datastore.CaptionPreset) error {
	args := m.Called(preset)
	return args.Error(0)
}

func (m *MockDataStore) GetCaptionPreset(presetKey string) (datastore.CaptionPreset, error) {
	args := m.Called(presetKey)
	return args.Get(0).(datastore.CaptionPreset), args.Error(1)
}

func (m *MockDataStore) ListCaptionPresets(filter datastore.PresetFilter) ([]datastore.CaptionPreset, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]datastore.CaptionPreset), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateCaptionPreset(presetKey string, fields map[string]any) (datastore.CaptionPreset, error) {
	args := m.Called(presetKey, fields)
	return args.Get(0).(datastore.CaptionPreset), args.Error(1)
}

func (m *MockDataStore) DeleteCaptionPreset(presetKey string, permanent bool) error {
	args := m.Called(presetKey, permanent)
	return args.Error(0)
}

func (m *MockDataStore) CreateCaption(caption *datastore.Caption) (datastore.Caption, error) {
	args := m.Called(caption)
	return args.Get(0).(datastore.Caption), args.Error(1)
}

func (m *MockDataStore) GetCaption(id string) (datastore.Caption, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.Caption), args.Error(1)
}

func (m *MockDataStore) GetCaptionByPresetKey(presetKey string) (datastore.Caption, error) {
	args := m.Called(presetKey)
	return args.Get(0).(datastore.Caption), args.Error(1)
}

func (m *MockDataStore) ListCaptions(filter datastore.CaptionFilter) ([]datastore.Caption, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]datastore.Caption), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateCaption(id string, fields map[string]any) (datastore.Caption, error) {
	args := m.Called(id, fields)
	return args.Get(0).(datastore.Caption), args.Error(1)
}

func (m *MockDataStore) DeleteCaption(id string, permanent bool) error {
	args := m.Called(id, permanent)
	return args.Error(0)
}

func (m *MockDataStore) CreateArtifactCaptionMap(artifactID, captionID string) (*datastore.ArtifactCaptionMap, error) {
	args := m.Called(artifactID, captionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.ArtifactCaptionMap), args.Error(1)
}

func (m *MockDataStore) CreateArtifactCaptionMaps(pairs []datastore.ArtifactCaptionPair) (datastore.BatchMapResult, error) {
	args := m.Called(pairs)
	return args.Get(0).(datastore.BatchMapResult), args.Error(1)
}

func (m *MockDataStore) DeleteArtifactCaptionMap(artifactID, captionID string) error {
	args := m.Called(artifactID, captionID)
	return args.Error(0)
}

func (m *MockDataStore) ListArtifactCaptions(artifactID string, skip, limit int) ([]datastore.Caption, error) {
	args := m.Called(artifactID, skip, limit)
	return args.Get(0).([]datastore.Caption), args.Error(1)
}

func (m *MockDataStore) ListCaptionArtifacts(captionID string, skip, limit int) ([]datastore.Artifact, error) {
	args := m.Called(captionID, skip, limit)
	return args.Get(0).([]datastore.Artifact), args.Error(1)
}

func (m *MockDataStore) CreateUser(user *datastore.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockDataStore) GetUser(id string) (datastore.User, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) GetUserByUsername(username string) (datastore.User, error) {
	args := m.Called(username)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) GetUserByEmail(email string) (datastore.User, error) {
	args := m.Called(email)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) ListUsers(filter datastore.UserFilter) ([]datastore.User, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]datastore.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateUser(id string, fields map[string]any) (datastore.User, error) {
	args := m.Called(id, fields)
	return args.Get(0).(datastore.User), args.Error(1)
}

func (m *MockDataStore) DeleteUser(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// setupTestEnvironment creates an Echo instance, a mock datastore and a
// Controller wired together for handler tests. Routes are not initialized;
// tests invoke handlers directly through echo contexts.
func setupTestEnvironment(t *testing.T) (*echo.Echo, *MockDataStore, *Controller) {
	t.Helper()

	e := echo.New()
	mockDS := new(MockDataStore)

	settings := &conf.Settings{}
	settings.WebServer.Debug = true
	settings.Version = "test"

	logger := log.New(os.Stdout, "API TEST: ", log.LstdFlags)

	controller := NewWithOptions(e, mockDS, settings, logger, false)
	t.Cleanup(controller.Shutdown)

	return e, mockDS, controller
}
