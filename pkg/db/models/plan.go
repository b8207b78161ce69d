package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Plan defines a purchasable subscription tier for vendors.
type Plan struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string           `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name          string           `gorm:"column:name;not null" json:"name"`
	Description   *string          `gorm:"column:description" json:"description,omitempty"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Currency      string           `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	DurationDays  int              `gorm:"column:duration_days;not null" json:"duration_days"`
	MaxServices   int              `gorm:"column:max_services;not null;default:1" json:"max_services"`
	MaxPhotos     int              `gorm:"column:max_photos;not null;default:5" json:"max_photos"`
	FeaturedSlots int              `gorm:"column:featured_slots;not null;default:0" json:"featured_slots"`
	Status        enums.PlanStatus `gorm:"column:status;type:plan_status;not null;default:'active'" json:"status"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
