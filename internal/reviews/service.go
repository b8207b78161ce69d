package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

type reviewsRepository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Review, error)
	ListVisibleByProfile(ctx context.Context, profileID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error)
	SetHidden(ctx context.Context, id uuid.UUID, hidden bool, at time.Time) (bool, error)
}

type bookingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// CreateInput is what a user submits when reviewing a completed booking.
type CreateInput struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment,omitempty"`
}

// Page is one cursor page of reviews.
type Page struct {
	Items      []models.Review `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// Service lets users review vendors after completed bookings and lets
// admins hide abusive reviews.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) (*Page, error)
	Hide(ctx context.Context, reviewID uuid.UUID) error
	Unhide(ctx context.Context, reviewID uuid.UUID) error
}

type service struct {
	repo     reviewsRepository
	bookings bookingFinder
}

func NewService(repo reviewsRepository, bookings bookingFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking finder required")
	}
	return &service{repo: repo, bookings: bookings}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	booking, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up booking")
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	if booking.Status != enums.BookingStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only completed bookings can be reviewed")
	}

	review := &models.Review{
		BookingID:       booking.ID,
		UserID:          userID,
		VendorProfileID: booking.VendorProfileID,
		Rating:          input.Rating,
		Comment:         input.Comment,
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "booking already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating review")
	}
	return created, nil
}

func (s *service) ListByProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) (*Page, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListVisibleByProfile(ctx, profileID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reviews")
	}

	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Hide(ctx context.Context, reviewID uuid.UUID) error {
	return s.setHidden(ctx, reviewID, true)
}

func (s *service) Unhide(ctx context.Context, reviewID uuid.UUID) error {
	return s.setHidden(ctx, reviewID, false)
}

func (s *service) setHidden(ctx context.Context, reviewID uuid.UUID, hidden bool) error {
	if reviewID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	found, err := s.repo.SetHidden(ctx, reviewID, hidden, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating review visibility")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}
