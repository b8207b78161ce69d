package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID        uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type      enums.NotificationType     `gorm:"column:type;type:notification_type;not null" json:"type"`
	Priority  enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'low'" json:"priority"`
	Title     string                     `gorm:"type:text;not null" json:"title"`
	Message   string                     `gorm:"type:text;not null" json:"message"`
	Link      *string                    `gorm:"type:text" json:"link,omitempty"`
	ReadAt    *time.Time                 `gorm:"type:timestamptz" json:"read_at,omitempty"`
	CreatedAt time.Time                  `gorm:"type:timestamptz;default:now()" json:"created_at"`
}
