package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorService is a bookable offering published by an approved vendor.
type VendorService struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorProfileID uuid.UUID       `gorm:"column:vendor_profile_id;type:uuid;not null;index" json:"vendor_profile_id"`
	Title           string          `gorm:"column:title;not null" json:"title"`
	Description     *string         `gorm:"column:description" json:"description,omitempty"`
	Category        string          `gorm:"column:category;not null" json:"category"`
	City            string          `gorm:"column:city;not null;index" json:"city"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null" json:"base_price"`
	Currency        string          `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	IsPublished     bool            `gorm:"column:is_published;not null;default:false" json:"is_published"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
