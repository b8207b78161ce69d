package moderation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

// Repository persists blocks and reports.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBlock(ctx context.Context, block *models.Block) (*models.Block, error) {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		return nil, err
	}
	return block, nil
}

func (r *Repository) DeleteBlock(ctx context.Context, blockerID, blockedUserID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_user_id = ?", blockerID, blockedUserID).
		Delete(&models.Block{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsBlockedEitherWay reports whether either user has blocked the other.
func (r *Repository) IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_user_id = ?) OR (blocker_id = ? AND blocked_user_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListBlocksByUser(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *Repository) CreateReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Repository) FindReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *Repository) UpdateReport(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

type listReportsParams struct {
	Status enums.ReportStatus
	Cursor *pagination.Cursor
	Limit  int
}

func (r *Repository) ListReports(ctx context.Context, params listReportsParams) ([]models.Report, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var reports []models.Report
	err := query.
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
