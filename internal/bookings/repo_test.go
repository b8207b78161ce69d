package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	vendorProfiles := `
CREATE TABLE IF NOT EXISTS vendor_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'registered',
  business_name TEXT,
  category TEXT,
  city TEXT,
  description TEXT,
  phone TEXT,
  website TEXT,
  plan_id TEXT,
  rejection_reason TEXT,
  submitted_at DATETIME,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  vendor_profile_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  event_date DATETIME NOT NULL,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  cancel_reason TEXT,
  confirmed_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vendorProfiles).Error)
	require.NoError(t, db.Exec(bookings).Error)
	return db
}

func insertBooking(t *testing.T, db *gorm.DB, booking *models.Booking) *models.Booking {
	t.Helper()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestRepositoryListByUserPaginates(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	profileID := uuid.New()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		insertBooking(t, db, &models.Booking{
			UserID:          userID,
			VendorProfileID: profileID,
			ServiceID:       uuid.New(),
			EventDate:       base.AddDate(0, 1, 0),
			Status:          enums.BookingStatusPending,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		})
	}
	// Another user's booking must never leak into the page.
	insertBooking(t, db, &models.Booking{
		UserID:          uuid.New(),
		VendorProfileID: profileID,
		ServiceID:       uuid.New(),
		EventDate:       base,
		Status:          enums.BookingStatusPending,
		CreatedAt:       base,
	})

	first, err := repo.ListByUser(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.ListByUser(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, userID, second[0].UserID)
	assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestRepositoryCompleteDueIsIdempotent(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	due := insertBooking(t, db, &models.Booking{
		UserID:          uuid.New(),
		VendorProfileID: uuid.New(),
		ServiceID:       uuid.New(),
		EventDate:       now.AddDate(0, 0, -2),
		Status:          enums.BookingStatusConfirmed,
	})
	pending := insertBooking(t, db, &models.Booking{
		UserID:          uuid.New(),
		VendorProfileID: uuid.New(),
		ServiceID:       uuid.New(),
		EventDate:       now.AddDate(0, 0, -2),
		Status:          enums.BookingStatusPending,
	})
	future := insertBooking(t, db, &models.Booking{
		UserID:          uuid.New(),
		VendorProfileID: uuid.New(),
		ServiceID:       uuid.New(),
		EventDate:       now.AddDate(0, 0, 2),
		Status:          enums.BookingStatusConfirmed,
	})

	moved, err := repo.CompleteDue(ctx, now, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	updated, err := repo.FindByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	untouched, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusPending, untouched.Status)

	upcoming, err := repo.FindByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, upcoming.Status)

	again, err := repo.CompleteDue(ctx, now, 100)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestRepositoryHasConfirmedBetween(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	memberID := uuid.New()
	vendorUserID := uuid.New()
	profileID := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO vendor_profiles (id, user_id, status) VALUES (?, ?, 'approved')`,
		profileID, vendorUserID,
	).Error)

	ok, err := repo.HasConfirmedBetween(ctx, memberID, vendorUserID)
	require.NoError(t, err)
	assert.False(t, ok)

	insertBooking(t, db, &models.Booking{
		UserID:          memberID,
		VendorProfileID: profileID,
		ServiceID:       uuid.New(),
		EventDate:       time.Now().UTC(),
		Status:          enums.BookingStatusPending,
	})

	// A pending booking is not a connection.
	ok, err = repo.HasConfirmedBetween(ctx, memberID, vendorUserID)
	require.NoError(t, err)
	assert.False(t, ok)

	insertBooking(t, db, &models.Booking{
		UserID:          memberID,
		VendorProfileID: profileID,
		ServiceID:       uuid.New(),
		EventDate:       time.Now().UTC(),
		Status:          enums.BookingStatusConfirmed,
	})

	ok, err = repo.HasConfirmedBetween(ctx, memberID, vendorUserID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Argument order must not matter.
	ok, err = repo.HasConfirmedBetween(ctx, vendorUserID, memberID)
	require.NoError(t, err)
	assert.True(t, ok)
}
