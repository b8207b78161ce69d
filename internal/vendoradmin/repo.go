package vendoradmin

import (
	"context"

	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

// Repository exposes the admin-facing vendor profile queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admin vendor repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStatus returns vendor profiles in the given status using cursor pagination.
func (r *Repository) ListByStatus(ctx context.Context, status enums.VendorStatus, cursor *pagination.Cursor, limit int) ([]models.VendorProfile, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorProfile{}).Where("status = ?", status)

	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limit)

	var rows []models.VendorProfile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
