package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

// Repository exposes vendor service persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vendor services repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new vendor service row.
func (r *Repository) Create(ctx context.Context, svc *models.VendorService) (*models.VendorService, error) {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// FindByID looks up a vendor service by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorService, error) {
	var svc models.VendorService
	if err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// ListByProfile returns every service owned by a vendor profile.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.VendorService, error) {
	var services []models.VendorService
	err := r.db.WithContext(ctx).
		Where("vendor_profile_id = ?", profileID).
		Order("created_at DESC, id DESC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

// CountByProfile counts the services a vendor profile currently holds.
func (r *Repository) CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VendorService{}).
		Where("vendor_profile_id = ?", profileID).
		Count(&count).Error
	return count, err
}

// Update persists the full vendor service row.
func (r *Repository) Update(ctx context.Context, svc *models.VendorService) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

// Delete removes a vendor service row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VendorService{}, "id = ?", id).Error
}

type searchParams struct {
	City     string
	Category string
	Cursor   *pagination.Cursor
	Limit    int
}

// Search returns published services from approved vendors, newest first.
func (r *Repository) Search(ctx context.Context, params searchParams) ([]models.VendorService, error) {
	query := r.db.WithContext(ctx).
		Model(&models.VendorService{}).
		Joins("JOIN vendor_profiles ON vendor_profiles.id = vendor_services.vendor_profile_id").
		Where("vendor_services.is_published = ?", true).
		Where("vendor_profiles.status = ?", enums.VendorStatusApproved)
	if params.City != "" {
		query = query.Where("vendor_services.city = ?", params.City)
	}
	if params.Category != "" {
		query = query.Where("vendor_services.category = ?", params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(vendor_services.created_at, vendor_services.id) < (?, ?)",
			params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var services []models.VendorService
	err := query.
		Order("vendor_services.created_at DESC, vendor_services.id DESC").
		Limit(params.Limit).
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
