package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// PhotoAccessRequest asks a photo owner to reveal their private photos to
// the requester. One pending request per (owner, requester) pair.
type PhotoAccessRequest struct {
	ID          uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID     uuid.UUID                 `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	RequesterID uuid.UUID                 `gorm:"column:requester_id;type:uuid;not null;index" json:"requester_id"`
	Status      enums.AccessRequestStatus `gorm:"column:status;type:access_request_status;not null;default:'pending'" json:"status"`
	DecidedAt   *time.Time                `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
