package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Subscription grants a vendor profile the entitlements of a plan for a
// bounded period. At most one active subscription may exist per profile,
// enforced by a partial unique index on (vendor_profile_id) where
// status = 'active'.
type Subscription struct {
	ID              uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorProfileID uuid.UUID                `gorm:"column:vendor_profile_id;type:uuid;not null;index" json:"vendor_profile_id"`
	PlanID          uuid.UUID                `gorm:"column:plan_id;type:uuid;not null" json:"plan_id"`
	PaymentID       *uuid.UUID               `gorm:"column:payment_id;type:uuid" json:"payment_id,omitempty"`
	Status          enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'" json:"status"`
	StartsAt        time.Time                `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt       time.Time                `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CancelledAt     *time.Time               `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	SupersededByID  *uuid.UUID               `gorm:"column:superseded_by_id;type:uuid" json:"superseded_by_id,omitempty"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
