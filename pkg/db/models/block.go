package models

import (
	"time"

	"github.com/google/uuid"
)

// Block hides two users from each other. The pair is unique per direction.
type Block struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BlockerID     uuid.UUID `gorm:"column:blocker_id;type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocker_id"`
	BlockedUserID uuid.UUID `gorm:"column:blocked_user_id;type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocked_user_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
