package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

// Repository exposes booking persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bookings repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new booking row.
func (r *Repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

// FindByID looks up a booking by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update persists the full booking row.
func (r *Repository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// ListByUser returns a user's bookings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	return r.list(ctx, "user_id = ?", userID, cursor, limit)
}

// ListByProfile returns a vendor profile's bookings, newest first.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	return r.list(ctx, "vendor_profile_id = ?", profileID, cursor, limit)
}

func (r *Repository) list(ctx context.Context, clause string, owner uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Where(clause, owner)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var bookings []models.Booking
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CompleteDue marks confirmed bookings with a past event date as completed
// and returns the number of rows moved.
func (r *Repository) CompleteDue(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	subquery := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("id").
		Where("status = ? AND event_date < ?", enums.BookingStatusConfirmed, now).
		Limit(batchSize)

	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id IN (?)", subquery).
		Updates(map[string]any{
			"status":       enums.BookingStatusCompleted,
			"completed_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// HasConfirmedBetween reports whether the two users share a confirmed or
// completed booking, in either direction of the user/vendor relationship.
func (r *Repository) HasConfirmedBetween(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN vendor_profiles ON vendor_profiles.id = bookings.vendor_profile_id").
		Where("bookings.status IN ?", []enums.BookingStatus{enums.BookingStatusConfirmed, enums.BookingStatusCompleted}).
		Where("(bookings.user_id = ? AND vendor_profiles.user_id = ?) OR (bookings.user_id = ? AND vendor_profiles.user_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
