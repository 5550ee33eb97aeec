// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmattila/artstore-go/internal/conf"
)

// Interface abstracts the underlying database implementation and defines the
// persistence operations available to the API layer. Every mutating operation
// is all-or-nothing: a failure mid-way rolls back everything the operation did.
type Interface interface {
	Open() error
	Close() error
	Ping() error

	// Artifacts
	CreateArtifact(artifact *Artifact) error
	GetArtifact(id string) (Artifact, error)
	GetArtifactByMD5(md5 string) (Artifact, error)
	ListArtifacts(filter ArtifactFilter) ([]Artifact, int64, error)
	UpdateArtifact(id string, fields map[string]any) (Artifact, error)
	DeleteArtifact(id string, permanent bool) error

	// Collections
	CreateCollection(collection *Collection) error
	GetCollection(id string) (Collection, error)
	ListCollections(filter CollectionFilter) ([]Collection, int64, error)
	UpdateCollection(id string, fields map[string]any) (Collection, error)
	DeleteCollection(id string, permanent bool) error

	// Collection membership and the cover consistency rule
	AddArtifactToCollection(collectionID, artifactID string) (*ArtifactCollectionMap, error)
	AddArtifactsToCollection(collectionID string, artifactIDs []string) (BatchAddResult, error)
	RemoveArtifactFromCollection(collectionID, artifactID string) error
	ListCollectionArtifacts(collectionID string, skip, limit int) ([]Artifact, int64, error)
	ListArtifactCollections(artifactID string, skip, limit int) ([]Collection, error)

	// Caption presets, keyed by natural key
	CreateCaptionPreset(preset *CaptionPreset) error
	GetCaptionPreset(presetKey string) (CaptionPreset, error)
	ListCaptionPresets(filter PresetFilter) ([]CaptionPreset, int64, error)
	UpdateCaptionPreset(presetKey string, fields map[string]any) (CaptionPreset, error)
	DeleteCaptionPreset(presetKey string, permanent bool) error

	// Captions
	CreateCaption(caption *Caption) (Caption, error)
	GetCaption(id string) (Caption, error)
	GetCaptionByPresetKey(presetKey string) (Caption, error)
	ListCaptions(filter CaptionFilter) ([]Caption, int64, error)
	UpdateCaption(id string, fields map[string]any) (Caption, error)
	DeleteCaption(id string, permanent bool) error

	// Artifact-caption associations
	CreateArtifactCaptionMap(artifactID, captionID string) (*ArtifactCaptionMap, error)
	CreateArtifactCaptionMaps(pairs []ArtifactCaptionPair) (BatchMapResult, error)
	DeleteArtifactCaptionMap(artifactID, captionID string) error
	ListArtifactCaptions(artifactID string, skip, limit int) ([]Caption, error)
	ListCaptionArtifacts(captionID string, skip, limit int) ([]Artifact, error)

	// Users
	CreateUser(user *User) error
	GetUser(id string) (User, error)
	GetUserByUsername(username string) (User, error)
	GetUserByEmail(email string) (User, error)
	ListUsers(filter UserFilter) ([]User, int64, error)
	UpdateUser(id string, fields map[string]any) (User, error)
	DeleteUser(id string) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
// Returns nil when no database backend is enabled; conf validation prevents
// that from reaching this point in normal operation.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Database.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Database.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// ArtifactFilter holds the optional list filters for artifacts.
type ArtifactFilter struct {
	Skip           int
	Limit          int
	Format         string
	MinWidth       int
	MaxWidth       int
	MinHeight      int
	MaxHeight      int
	IncludeDeleted bool
}

// CollectionFilter holds the optional list filters for collections.
type CollectionFilter struct {
	Skip           int
	Limit          int
	CreatedBy      string
	IncludeDeleted bool
}

// PresetFilter holds the optional list filters for caption presets.
type PresetFilter struct {
	Skip           int
	Limit          int
	IncludeDeleted bool
}

// CaptionFilter holds the optional list filters for captions.
type CaptionFilter struct {
	Skip           int
	Limit          int
	CaptionType    string
	IncludeDeleted bool
}

// UserFilter holds the optional list filters for users.
type UserFilter struct {
	Skip        int
	Limit       int
	IsActive    *bool
	IsSuperuser *bool
}

// BatchAddResult aggregates the per-item outcomes of a batch membership add.
// A missing artifact does not abort the batch, it is counted instead.
type BatchAddResult struct {
	AddedCount         int `json:"added_count"`
	AlreadyExistsCount int `json:"already_exists_count"`
	NotFoundCount      int `json:"not_found_count"`
}

// ArtifactCaptionPair identifies one requested artifact-caption association.
type ArtifactCaptionPair struct {
	ArtifactID string `json:"artifact_id"`
	CaptionID  string `json:"caption_id"`
}

// BatchMapResult aggregates the per-item outcomes of a batch map creation.
// Successful items commit together even when other items failed validation.
type BatchMapResult struct {
	Success      bool     `json:"success"`
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}

// normalizePagination applies the default page size and caps the limit.
func normalizePagination(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	return skip, limit
}

// epochNow returns the current time as epoch seconds, the timestamp format
// used across all tables.
func epochNow() int64 {
	return time.Now().Unix()
}

// Ping executes a trivial query to verify the database connection.
func (ds *DataStore) Ping() error {
	if ds.DB == nil {
		return dbError(gorm.ErrInvalidDB, "ping")
	}
	var one int
	if err := ds.DB.Raw("SELECT 1").Scan(&one).Error; err != nil {
		return dbError(err, "ping")
	}
	return nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&Artifact{},
		&Collection{},
		&ArtifactCollectionMap{},
		&CaptionPreset{},
		&Caption{},
		&ArtifactCaptionMap{},
		&User{},
	); err != nil {
		return dbError(err, "auto_migrate", "db_type", dbType)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
