package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is left by a user against a vendor after a completed booking.
// One review per booking, enforced by the unique index on booking_id.
type Review struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookingID       uuid.UUID  `gorm:"column:booking_id;type:uuid;not null;uniqueIndex" json:"booking_id"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	VendorProfileID uuid.UUID  `gorm:"column:vendor_profile_id;type:uuid;not null;index" json:"vendor_profile_id"`
	Rating          int        `gorm:"column:rating;not null" json:"rating"`
	Comment         *string    `gorm:"column:comment" json:"comment,omitempty"`
	IsHidden        bool       `gorm:"column:is_hidden;not null;default:false" json:"is_hidden"`
	HiddenAt        *time.Time `gorm:"column:hidden_at" json:"hidden_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
