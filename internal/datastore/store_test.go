// store_test.go: shared helpers for datastore tests.
//
// These tests use real SQLite databases (not mocks) to exercise actual GORM
// behavior, the same way the persistence rules run in production.
package datastore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmattila/artstore-go/internal/conf"
)

// createTestSettings returns settings pointing at an in-memory SQLite database.
func createTestSettings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = ":memory:"
	return settings
}

// createDatabase opens a fresh store and registers cleanup.
func createDatabase(t *testing.T, settings *conf.Settings) *SQLiteStore {
	t.Helper()

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open(), "failed to open test database")
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// createTestArtifact inserts an artifact with the given md5 and returns it.
func createTestArtifact(t *testing.T, store *SQLiteStore, md5 string) Artifact {
	t.Helper()

	artifact := Artifact{
		Width:        1920,
		Height:       1080,
		Size:         123456,
		Pixels:       1920 * 1080,
		Format:       "png",
		MD5:          md5,
		OriginalPath: "/data/original/" + md5 + ".png",
	}
	require.NoError(t, store.CreateArtifact(&artifact))
	return artifact
}

// createTestCollection inserts a collection with the given name and returns it.
func createTestCollection(t *testing.T, store *SQLiteStore, name string) Collection {
	t.Helper()

	collection := Collection{
		Name:        name,
		Description: "test collection",
	}
	require.NoError(t, store.CreateCollection(&collection))
	return collection
}

// setMembershipAddedTime forces a membership add-time, so cover succession
// ordering can be asserted deterministically.
func setMembershipAddedTime(t *testing.T, store *SQLiteStore, collectionID, artifactID string, addedTime int64) {
	t.Helper()

	err := store.DB.Model(&ArtifactCollectionMap{}).
		Where("collection_id = ? AND artifact_id = ?", collectionID, artifactID).
		Update("added_time", addedTime).Error
	require.NoError(t, err)
}
