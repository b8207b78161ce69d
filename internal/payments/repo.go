package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Repository exposes payment persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByCorrelationID(ctx context.Context, correlationID string) (*models.Payment, error)
	SetGatewayRef(ctx context.Context, id uuid.UUID, gatewayRef string) error
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	FindLatestProcessedByProfile(ctx context.Context, profileID uuid.UUID) (*models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a payment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByCorrelationID(ctx context.Context, correlationID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "correlation_id = ?", correlationID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) SetGatewayRef(ctx context.Context, id uuid.UUID, gatewayRef string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("gateway_ref", gatewayRef).Error
}

// MarkProcessed flips a pending payment to processed. The status guard in the
// WHERE clause makes reconciliation idempotent under concurrent callbacks.
func (r *repository) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":       enums.PaymentStatusProcessed,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) FindLatestProcessedByProfile(ctx context.Context, profileID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("vendor_profile_id = ? AND status = ?", profileID, enums.PaymentStatusProcessed).
		Order("processed_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
