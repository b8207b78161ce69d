package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// VendorProfile tracks a vendor's business identity and onboarding state.
type VendorProfile struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	BusinessName    *string            `gorm:"column:business_name" json:"business_name,omitempty"`
	Category        *string            `gorm:"column:category" json:"category,omitempty"`
	Description     *string            `gorm:"column:description" json:"description,omitempty"`
	City            *string            `gorm:"column:city" json:"city,omitempty"`
	Address         *string            `gorm:"column:address" json:"address,omitempty"`
	ContactPhone    *string            `gorm:"column:contact_phone" json:"contact_phone,omitempty"`
	SelectedPlanID  *uuid.UUID         `gorm:"column:selected_plan_id;type:uuid" json:"selected_plan_id,omitempty"`
	Status          enums.VendorStatus `gorm:"column:status;type:vendor_status;not null;default:'registered'" json:"status"`
	RejectionReason *string            `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	SuspendedReason *string            `gorm:"column:suspended_reason" json:"suspended_reason,omitempty"`
	ReviewedByID    *uuid.UUID         `gorm:"column:reviewed_by_id;type:uuid" json:"reviewed_by_id,omitempty"`
	ApprovedAt      *time.Time         `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
