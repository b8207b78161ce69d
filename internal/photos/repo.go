package photos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Repository persists photos and their access requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// FindAll streams every photo row in id order, in batches. Used by the
// orphan cleanup job.
func (r *Repository) FindAll(ctx context.Context, batchSize int, fn func([]models.Photo) error) error {
	var batch []models.Photo
	return r.db.WithContext(ctx).
		Order("id").
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

func (r *Repository) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility enums.PhotoVisibility) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Update("visibility", visibility)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", id).Error
}

func (r *Repository) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.Photo{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

func (r *Repository) CreateAccessRequest(ctx context.Context, request *models.PhotoAccessRequest) (*models.PhotoAccessRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *Repository) FindAccessRequestByID(ctx context.Context, id uuid.UUID) (*models.PhotoAccessRequest, error) {
	var request models.PhotoAccessRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *Repository) UpdateAccessRequest(ctx context.Context, request *models.PhotoAccessRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// HasGrantedAccess reports whether the owner has granted the requester
// access to their restricted photos.
func (r *Repository) HasGrantedAccess(ctx context.Context, ownerID, requesterID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PhotoAccessRequest{}).
		Where("owner_id = ? AND requester_id = ? AND status = ?",
			ownerID, requesterID, enums.AccessRequestStatusGranted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
