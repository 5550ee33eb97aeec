// model.go this code defines the data model for the application
package datastore

// Artifact represents an uploaded image and its derived metadata.
// Soft deleted rows stay in the table with IsDeleted set; the md5 hash is
// unique across deleted and live rows alike.
type Artifact struct {
	ID          string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	UploadTime  int64    `gorm:"not null;index:idx_artifacts_upload_time" json:"upload_time"`
	UpdateTime  int64    `gorm:"not null" json:"update_time"`
	CreatedTime int64    `gorm:"not null" json:"created_time"`
	UploadUser  *string  `gorm:"type:varchar(36)" json:"upload_user,omitempty"`
	ChildrenID  []string `gorm:"serializer:json" json:"children_id,omitempty"`

	// Image metadata
	Width       int     `gorm:"not null" json:"width"`
	Height      int     `gorm:"not null" json:"height"`
	Size        int64   `gorm:"not null" json:"size"`
	Pixels      int64   `gorm:"not null" json:"pixels"`
	Format      string  `gorm:"type:varchar(10);not null" json:"format"`
	MD5         string  `gorm:"type:varchar(32);not null;uniqueIndex" json:"md5"`
	AspectRatio float64 `json:"aspect_ratio"` // derived from width/height, never client supplied
	HasAlpha    bool    `gorm:"not null;default:false" json:"has_alpha"`
	LocalPath   *string `gorm:"type:varchar(255)" json:"local_path,omitempty"`
	OriginName  *string `gorm:"type:varchar(255)" json:"origin_name,omitempty"`

	// Storage paths at multiple resolutions
	OriginalPath  string  `gorm:"type:text;not null" json:"original_path"`
	Size2048xPath *string `gorm:"type:text" json:"size_2048x_path,omitempty"`
	Size1024xPath *string `gorm:"type:text" json:"size_1024x_path,omitempty"`
	Size256xPath  *string `gorm:"type:text" json:"size_256x_path,omitempty"`

	// Soft delete
	IsDeleted   bool   `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedTime *int64 `json:"deleted_time,omitempty"`
}

// Collection represents a named grouping of artifacts with one designated cover.
// The cover, when set, always references a current member; membership changes
// maintain this without caller involvement.
type Collection struct {
	ID              string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string  `gorm:"type:varchar(255);not null" json:"name"`
	Description     string  `gorm:"type:text" json:"description"`
	CreatedBy       *string `gorm:"type:varchar(36);index" json:"created_by,omitempty"`
	CoverArtifactID *string `gorm:"type:varchar(36)" json:"cover_artifact_id,omitempty"`
	CreatedTime     int64   `gorm:"not null;index:idx_collections_created_time" json:"created_time"`
	UpdatedTime     int64   `gorm:"not null" json:"updated_time"`
	IsDeleted       bool    `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedTime     *int64  `json:"deleted_time,omitempty"`
}

// ArtifactCollectionMap is the membership table between artifacts and collections.
// GORM will automatically create table name as 'artifact_collection_maps'
type ArtifactCollectionMap struct {
	ArtifactID   string `gorm:"type:varchar(36);primaryKey;constraint:OnDelete:CASCADE" json:"artifact_id"`
	CollectionID string `gorm:"type:varchar(36);primaryKey;index;constraint:OnDelete:CASCADE" json:"collection_id"`
	AddedTime    int64  `gorm:"not null;index" json:"added_time"`

	Artifact   Artifact   `gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE" json:"-"`
	Collection Collection `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"-"`
}

// CaptionPreset is a reusable captioning configuration addressed by its
// natural key rather than a surrogate id. At most one active preset exists
// per key; a soft deleted preset with the same key is revived on re-create.
type CaptionPreset struct {
	PresetKey   string         `gorm:"type:varchar(255);primaryKey" json:"preset_key"`
	Config      map[string]any `gorm:"serializer:json" json:"config"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedBy   *string        `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	CreatedTime int64          `gorm:"not null" json:"created_time"`
	IsDeleted   bool           `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedTime *int64         `json:"deleted_time,omitempty"`
}

// Caption represents a text annotation of an artifact, optionally produced
// from a preset. A preset key maps to at most one active caption; submitting
// a new caption for the same key overwrites the existing row.
type Caption struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CaptionType string         `gorm:"type:varchar(50);not null" json:"caption_type"`
	PresetKey   *string        `gorm:"type:varchar(255);index" json:"preset_key,omitempty"`
	UploadTime  int64          `gorm:"not null;index" json:"upload_time"`
	Content     string         `gorm:"type:text" json:"content"`
	Extra       map[string]any `gorm:"serializer:json" json:"extra,omitempty"`
	IsDeleted   bool           `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedTime *int64         `json:"deleted_time,omitempty"`
}

// ArtifactCaptionMap is the association table between artifacts and captions.
// GORM will automatically create table name as 'artifact_caption_maps'
type ArtifactCaptionMap struct {
	ArtifactID string `gorm:"type:varchar(36);primaryKey;constraint:OnDelete:CASCADE" json:"artifact_id"`
	CaptionID  string `gorm:"type:varchar(36);primaryKey;index;constraint:OnDelete:CASCADE" json:"caption_id"`
	AddedTime  int64  `gorm:"not null" json:"added_time"`

	Artifact Artifact `gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE" json:"-"`
	Caption  Caption  `gorm:"foreignKey:CaptionID;constraint:OnDelete:CASCADE" json:"-"`
}

// User is a minimal account record backing the demonstration login check.
type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser  bool   `gorm:"not null;default:false" json:"is_superuser"`
	CreatedTime  int64  `gorm:"not null" json:"created_time"`
	UpdatedTime  int64  `gorm:"not null" json:"updated_time"`
}
