package bookings

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
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

// bookingTransitions is the directed edge set of the booking lifecycle.
var bookingTransitions = map[enums.BookingStatus][]enums.BookingStatus{
	enums.BookingStatusPending:   {enums.BookingStatusConfirmed, enums.BookingStatusCancelled},
	enums.BookingStatusConfirmed: {enums.BookingStatusCompleted, enums.BookingStatusCancelled},
}

func canTransition(from, to enums.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type bookingsRepository interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error)
	CompleteDue(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

type serviceFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorService, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

type blockChecker interface {
	IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// CreateInput carries the fields a user supplies when requesting a booking.
type CreateInput struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	EventDate time.Time `json:"event_date" validate:"required"`
	Notes     *string   `json:"notes,omitempty"`
}

// Page is one cursor page of bookings.
type Page struct {
	Items      []models.Booking `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Service manages the booking lifecycle between users and vendors.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Booking, error)
	Confirm(ctx context.Context, vendorUserID, bookingID uuid.UUID) (*models.Booking, error)
	CancelByVendor(ctx context.Context, vendorUserID, bookingID uuid.UUID, reason string) (*models.Booking, error)
	CancelByUser(ctx context.Context, userID, bookingID uuid.UUID) (*models.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
	ListForVendor(ctx context.Context, vendorUserID uuid.UUID, params pagination.Params) (*Page, error)
	CompleteDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo     bookingsRepository
	Services serviceFinder
	Profiles profileFinder
	Blocks   blockChecker
	Bus      eventPublisher
	Logger   *logger.Logger
}

type service struct {
	repo     bookingsRepository
	services serviceFinder
	profiles profileFinder
	blocks   blockChecker
	bus      eventPublisher
	logg     *logger.Logger
}

// NewService validates dependencies and builds the bookings service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("service finder required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile finder required")
	}
	if params.Blocks == nil {
		return nil, fmt.Errorf("block checker required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{
		repo:     params.Repo,
		services: params.Services,
		profiles: params.Profiles,
		blocks:   params.Blocks,
		bus:      params.Bus,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Booking, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_id is required")
	}
	if input.EventDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_date is required")
	}
	if input.EventDate.Before(time.Now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_date must be in the future")
	}

	svc, err := s.services.FindByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up service")
	}
	if !svc.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}

	profile, err := s.profiles.FindByID(ctx, svc.VendorProfileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up vendor profile")
	}
	if profile.UserID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot book your own service")
	}
	if profile.Status != enums.VendorStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}

	blocked, err := s.blocks.IsBlockedEitherWay(ctx, userID, profile.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking blocks")
	}
	if blocked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking not permitted")
	}

	booking := &models.Booking{
		UserID:          userID,
		VendorProfileID: profile.ID,
		ServiceID:       svc.ID,
		EventDate:       input.EventDate.UTC(),
		Notes:           input.Notes,
		Status:          enums.BookingStatusPending,
	}
	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating booking")
	}

	s.notify(ctx, profile.UserID, "New booking request",
		fmt.Sprintf("You have a new booking request for %s.", svc.Title),
		enums.NotificationPriorityHigh)
	return created, nil
}

func (s *service) Confirm(ctx context.Context, vendorUserID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.vendorBooking(ctx, vendorUserID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(booking, enums.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	booking.ConfirmedAt = &now

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving booking")
	}

	s.notify(ctx, booking.UserID, "Booking confirmed",
		"Your booking was confirmed by the vendor.", enums.NotificationPriorityHigh)
	return booking, nil
}

func (s *service) CancelByVendor(ctx context.Context, vendorUserID, bookingID uuid.UUID, reason string) (*models.Booking, error) {
	booking, err := s.vendorBooking(ctx, vendorUserID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(booking, enums.BookingStatusCancelled); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	booking.CancelledAt = &now
	if reason != "" {
		booking.CancelReason = &reason
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving booking")
	}

	message := "Your booking was cancelled by the vendor."
	if reason != "" {
		message = fmt.Sprintf("Your booking was cancelled by the vendor: %s", reason)
	}
	s.notify(ctx, booking.UserID, "Booking cancelled", message, enums.NotificationPriorityHigh)
	return booking, nil
}

func (s *service) CancelByUser(ctx context.Context, userID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}

	if err := s.transition(booking, enums.BookingStatusCancelled); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	booking.CancelledAt = &now

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving booking")
	}

	profile, err := s.profiles.FindByID(ctx, booking.VendorProfileID)
	if err == nil {
		s.notify(ctx, profile.UserID, "Booking cancelled",
			"A booking was cancelled by the customer.", enums.NotificationPriorityLow)
	}
	return booking, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cursor, limit, err := parsePage(params)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bookings")
	}
	return buildPage(rows, limit), nil
}

func (s *service) ListForVendor(ctx context.Context, vendorUserID uuid.UUID, params pagination.Params) (*Page, error) {
	profile, err := s.callerProfile(ctx, vendorUserID)
	if err != nil {
		return nil, err
	}
	cursor, limit, err := parsePage(params)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProfile(ctx, profile.ID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bookings")
	}
	return buildPage(rows, limit), nil
}

// CompleteDue is called from cron to move past-dated confirmed bookings to
// completed.
func (s *service) CompleteDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	moved, err := s.repo.CompleteDue(ctx, now, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "completing due bookings")
	}
	return int(moved), nil
}

func (s *service) transition(booking *models.Booking, to enums.BookingStatus) error {
	if !canTransition(booking.Status, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move booking from %s to %s", booking.Status, to)).
			WithDetails(map[string]any{"from": booking.Status.String(), "to": to.String()})
	}
	booking.Status = to
	return nil
}

func (s *service) vendorBooking(ctx context.Context, vendorUserID, bookingID uuid.UUID) (*models.Booking, error) {
	profile, err := s.callerProfile(ctx, vendorUserID)
	if err != nil {
		return nil, err
	}
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.VendorProfileID != profile.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another vendor")
	}
	return booking, nil
}

func (s *service) callerProfile(ctx context.Context, vendorUserID uuid.UUID) (*models.VendorProfile, error) {
	if vendorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.profiles.FindByUserID(ctx, vendorUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller has no vendor profile")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up vendor profile")
	}
	return profile, nil
}

func (s *service) findBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up booking")
	}
	return booking, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, title, message string, priority enums.NotificationPriority) {
	err := s.bus.Publish(ctx, events.Notify{
		UserID:   userID,
		Type:     enums.NotificationTypeBookingUpdate,
		Priority: priority,
		Title:    title,
		Message:  message,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "booking notification dispatch failed", err)
	}
}

func parsePage(params pagination.Params) (*pagination.Cursor, int, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}
	return cursor, pagination.NormalizeLimit(params.Limit), nil
}

func buildPage(rows []models.Booking, limit int) *Page {
	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page
}
