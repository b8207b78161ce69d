package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Booking ties a user to a vendor service on a given event date.
type Booking struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	VendorProfileID uuid.UUID           `gorm:"column:vendor_profile_id;type:uuid;not null;index" json:"vendor_profile_id"`
	ServiceID       uuid.UUID           `gorm:"column:service_id;type:uuid;not null" json:"service_id"`
	EventDate       time.Time           `gorm:"column:event_date;not null" json:"event_date"`
	Notes           *string             `gorm:"column:notes" json:"notes,omitempty"`
	Status          enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'" json:"status"`
	CancelReason    *string             `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	ConfirmedAt     *time.Time          `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
