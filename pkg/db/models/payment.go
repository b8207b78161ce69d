package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Payment records a gateway charge attempt for a plan purchase. The
// CorrelationID round-trips through the gateway's metadata so webhook and
// verify flows resolve back to the same row.
type Payment struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorProfileID uuid.UUID           `gorm:"column:vendor_profile_id;type:uuid;not null;index" json:"vendor_profile_id"`
	PlanID          uuid.UUID           `gorm:"column:plan_id;type:uuid;not null" json:"plan_id"`
	CorrelationID   string              `gorm:"column:correlation_id;not null;uniqueIndex" json:"correlation_id"`
	GatewayRef      *string             `gorm:"column:gateway_ref;uniqueIndex" json:"gateway_ref,omitempty"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency        string              `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	Status          enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'" json:"status"`
	FailureReason   *string             `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time          `gorm:"column:processed_at" json:"processed_at,omitempty"`
	Metadata        json.RawMessage     `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
