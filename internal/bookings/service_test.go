package bookings

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

type fakeBookingsRepo struct {
	rows map[uuid.UUID]*models.Booking
}

func newFakeBookingsRepo() *fakeBookingsRepo {
	return &fakeBookingsRepo{rows: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookingsRepo) Create(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	copied := *booking
	f.rows[booking.ID] = &copied
	return booking, nil
}

func (f *fakeBookingsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingsRepo) Update(_ context.Context, booking *models.Booking) error {
	copied := *booking
	f.rows[booking.ID] = &copied
	return nil
}

func (f *fakeBookingsRepo) ListByUser(_ context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	return f.list(func(b *models.Booking) bool { return b.UserID == userID }, cursor, limit), nil
}

func (f *fakeBookingsRepo) ListByProfile(_ context.Context, profileID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	return f.list(func(b *models.Booking) bool { return b.VendorProfileID == profileID }, cursor, limit), nil
}

func (f *fakeBookingsRepo) list(match func(*models.Booking) bool, cursor *pagination.Cursor, limit int) []models.Booking {
	var out []models.Booking
	for _, booking := range f.rows {
		if !match(booking) {
			continue
		}
		if cursor != nil && !booking.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		out = append(out, *booking)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeBookingsRepo) CompleteDue(_ context.Context, now time.Time, batchSize int) (int64, error) {
	var moved int64
	completedAt := now
	for _, booking := range f.rows {
		if moved >= int64(batchSize) {
			break
		}
		if booking.Status == enums.BookingStatusConfirmed && booking.EventDate.Before(now) {
			booking.Status = enums.BookingStatusCompleted
			booking.CompletedAt = &completedAt
			moved++
		}
	}
	return moved, nil
}

type fakeServiceFinder struct {
	rows map[uuid.UUID]*models.VendorService
}

func (f *fakeServiceFinder) FindByID(_ context.Context, id uuid.UUID) (*models.VendorService, error) {
	svc, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return svc, nil
}

type fakeProfileFinder struct {
	rows map[uuid.UUID]*models.VendorProfile
}

func (f *fakeProfileFinder) FindByID(_ context.Context, id uuid.UUID) (*models.VendorProfile, error) {
	profile, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeProfileFinder) FindByUserID(_ context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	for _, profile := range f.rows {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeBlockChecker struct {
	blocked bool
}

func (f *fakeBlockChecker) IsBlockedEitherWay(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return f.blocked, nil
}

type capturingBus struct {
	published []any
}

func (c *capturingBus) Publish(_ context.Context, event any) error {
	c.published = append(c.published, event)
	return nil
}

type bookingsFixture struct {
	service      Service
	repo         *fakeBookingsRepo
	bus          *capturingBus
	blocks       *fakeBlockChecker
	userID       uuid.UUID
	vendorUserID uuid.UUID
	profileID    uuid.UUID
	serviceID    uuid.UUID
}

func newBookingsFixture(t *testing.T) *bookingsFixture {
	t.Helper()

	userID := uuid.New()
	vendorUserID := uuid.New()
	profileID := uuid.New()
	serviceID := uuid.New()

	profiles := &fakeProfileFinder{rows: map[uuid.UUID]*models.VendorProfile{
		profileID: {ID: profileID, UserID: vendorUserID, Status: enums.VendorStatusApproved},
	}}
	services := &fakeServiceFinder{rows: map[uuid.UUID]*models.VendorService{
		serviceID: {ID: serviceID, VendorProfileID: profileID, Title: "Banquet hall", IsPublished: true},
	}}

	repo := newFakeBookingsRepo()
	bus := &capturingBus{}
	blocks := &fakeBlockChecker{}

	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Services: services,
		Profiles: profiles,
		Blocks:   blocks,
		Bus:      bus,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &bookingsFixture{
		service:      svc,
		repo:         repo,
		bus:          bus,
		blocks:       blocks,
		userID:       userID,
		vendorUserID: vendorUserID,
		profileID:    profileID,
		serviceID:    serviceID,
	}
}

func (f *bookingsFixture) createBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking, err := f.service.Create(context.Background(), f.userID, CreateInput{
		ServiceID: f.serviceID,
		EventDate: time.Now().UTC().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return booking
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := pkgerrors.CodeOf(err); got != want {
		t.Fatalf("expected code %s, got %s (%v)", want, got, err)
	}
}

func TestCreateBookingNotifiesVendor(t *testing.T) {
	f := newBookingsFixture(t)

	booking := f.createBooking(t)

	if booking.Status != enums.BookingStatusPending {
		t.Fatalf("expected pending status, got %s", booking.Status)
	}
	if booking.VendorProfileID != f.profileID {
		t.Fatalf("expected vendor profile %s, got %s", f.profileID, booking.VendorProfileID)
	}
	if len(f.bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.bus.published))
	}
	notify, ok := f.bus.published[0].(events.Notify)
	if !ok {
		t.Fatalf("expected Notify event, got %T", f.bus.published[0])
	}
	if notify.UserID != f.vendorUserID {
		t.Fatalf("notification should target the vendor user")
	}
	if notify.Type != enums.NotificationTypeBookingUpdate {
		t.Fatalf("expected booking_update notification, got %s", notify.Type)
	}
}

func TestCreateBookingRejectsPastEventDate(t *testing.T) {
	f := newBookingsFixture(t)

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{
		ServiceID: f.serviceID,
		EventDate: time.Now().UTC().Add(-time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateBookingRejectsOwnService(t *testing.T) {
	f := newBookingsFixture(t)

	_, err := f.service.Create(context.Background(), f.vendorUserID, CreateInput{
		ServiceID: f.serviceID,
		EventDate: time.Now().UTC().Add(48 * time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateBookingBlockedPairForbidden(t *testing.T) {
	f := newBookingsFixture(t)
	f.blocks.blocked = true

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{
		ServiceID: f.serviceID,
		EventDate: time.Now().UTC().Add(48 * time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateBookingUnpublishedServiceHidden(t *testing.T) {
	f := newBookingsFixture(t)
	hidden := uuid.New()
	f.service.(*service).services.(*fakeServiceFinder).rows[hidden] = &models.VendorService{
		ID: hidden, VendorProfileID: f.profileID, IsPublished: false,
	}

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{
		ServiceID: hidden,
		EventDate: time.Now().UTC().Add(48 * time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestConfirmBooking(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	confirmed, err := f.service.Confirm(context.Background(), f.vendorUserID, booking.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != enums.BookingStatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatal("expected confirmed_at to be set")
	}

	notify := f.bus.published[len(f.bus.published)-1].(events.Notify)
	if notify.UserID != f.userID {
		t.Fatalf("confirmation should notify the booking user")
	}
}

func TestConfirmBookingForeignVendorForbidden(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	otherVendor := uuid.New()
	profiles := f.service.(*service).profiles.(*fakeProfileFinder)
	otherProfile := uuid.New()
	profiles.rows[otherProfile] = &models.VendorProfile{
		ID: otherProfile, UserID: otherVendor, Status: enums.VendorStatusApproved,
	}

	_, err := f.service.Confirm(context.Background(), otherVendor, booking.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestConfirmTwiceStateConflict(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	if _, err := f.service.Confirm(context.Background(), f.vendorUserID, booking.ID); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	_, err := f.service.Confirm(context.Background(), f.vendorUserID, booking.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestVendorCancelRecordsReason(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	cancelled, err := f.service.CancelByVendor(context.Background(), f.vendorUserID, booking.ID, "double booked")
	if err != nil {
		t.Fatalf("CancelByVendor: %v", err)
	}
	if cancelled.Status != enums.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancelReason == nil || *cancelled.CancelReason != "double booked" {
		t.Fatalf("expected cancel reason to be recorded, got %v", cancelled.CancelReason)
	}
}

func TestUserCancelOwnershipEnforced(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	_, err := f.service.CancelByUser(context.Background(), uuid.New(), booking.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	cancelled, err := f.service.CancelByUser(context.Background(), f.userID, booking.ID)
	if err != nil {
		t.Fatalf("CancelByUser: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
}

func TestCancelCompletedBookingStateConflict(t *testing.T) {
	f := newBookingsFixture(t)
	booking := f.createBooking(t)

	stored := f.repo.rows[booking.ID]
	stored.Status = enums.BookingStatusCompleted

	_, err := f.service.CancelByUser(context.Background(), f.userID, booking.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListForUserPaginates(t *testing.T) {
	f := newBookingsFixture(t)
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		f.repo.rows[uuid.New()] = &models.Booking{
			ID:        uuid.New(),
			UserID:    f.userID,
			Status:    enums.BookingStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	page, err := f.service.ListForUser(context.Background(), f.userID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	rest, err := f.service.ListForUser(context.Background(), f.userID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("ListForUser page 2: %v", err)
	}
	if len(rest.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(rest.Items))
	}
}

func TestCompleteDueMovesPastConfirmed(t *testing.T) {
	f := newBookingsFixture(t)
	now := time.Now().UTC()

	past := uuid.New()
	f.repo.rows[past] = &models.Booking{
		ID: past, UserID: f.userID, VendorProfileID: f.profileID,
		Status: enums.BookingStatusConfirmed, EventDate: now.Add(-24 * time.Hour),
	}
	future := uuid.New()
	f.repo.rows[future] = &models.Booking{
		ID: future, UserID: f.userID, VendorProfileID: f.profileID,
		Status: enums.BookingStatusConfirmed, EventDate: now.Add(24 * time.Hour),
	}

	moved, err := f.service.CompleteDue(context.Background(), now, 50)
	if err != nil {
		t.Fatalf("CompleteDue: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 booking moved, got %d", moved)
	}
	if f.repo.rows[past].Status != enums.BookingStatusCompleted {
		t.Fatal("past booking should be completed")
	}
	if f.repo.rows[future].Status != enums.BookingStatusConfirmed {
		t.Fatal("future booking should remain confirmed")
	}
}
