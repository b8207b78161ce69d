package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Photo is an uploaded image owned by a user or vendor profile. ObjectKey
// addresses the blob in storage; rows whose blob is missing (or blobs with no
// row) are reconciled by the cleanup job.
type Photo struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID    uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	ObjectKey  string                `gorm:"column:object_key;not null;uniqueIndex" json:"-"`
	FileName   string                `gorm:"column:file_name;not null" json:"file_name"`
	MimeType   string                `gorm:"column:mime_type;not null" json:"mime_type"`
	SizeBytes  int64                 `gorm:"column:size_bytes;not null" json:"size_bytes"`
	Visibility enums.PhotoVisibility `gorm:"column:visibility;type:photo_visibility;not null;default:'request'" json:"visibility"`
	IsProfile  bool                  `gorm:"column:is_profile;not null;default:false" json:"is_profile"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
