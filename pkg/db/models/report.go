package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Report is a misconduct complaint filed by one user against another.
type Report struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID     uuid.UUID          `gorm:"column:reporter_id;type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID uuid.UUID          `gorm:"column:reported_user_id;type:uuid;not null;index" json:"reported_user_id"`
	Reason         string             `gorm:"column:reason;not null" json:"reason"`
	Details        *string            `gorm:"column:details" json:"details,omitempty"`
	Status         enums.ReportStatus `gorm:"column:status;type:report_status;not null;default:'open'" json:"status"`
	ResolvedByID   *uuid.UUID         `gorm:"column:resolved_by_id;type:uuid" json:"resolved_by_id,omitempty"`
	ResolutionNote *string            `gorm:"column:resolution_note" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time         `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
