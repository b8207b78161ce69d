package reviews

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
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

type fakeReviewsRepo struct {
	rows map[uuid.UUID]*models.Review
}

func newFakeReviewsRepo() *fakeReviewsRepo {
	return &fakeReviewsRepo{rows: make(map[uuid.UUID]*models.Review)}
}

func (f *fakeReviewsRepo) Create(_ context.Context, review *models.Review) (*models.Review, error) {
	for _, existing := range f.rows {
		if existing.BookingID == review.BookingID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	copied := *review
	f.rows[review.ID] = &copied
	return review, nil
}

func (f *fakeReviewsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	review, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReviewsRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*models.Review, error) {
	for _, review := range f.rows {
		if review.BookingID == bookingID {
			copied := *review
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewsRepo) ListVisibleByProfile(_ context.Context, profileID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error) {
	var out []models.Review
	for _, review := range f.rows {
		if review.VendorProfileID != profileID || review.IsHidden {
			continue
		}
		if cursor != nil && !review.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		out = append(out, *review)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReviewsRepo) SetHidden(_ context.Context, id uuid.UUID, hidden bool, at time.Time) (bool, error) {
	review, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	review.IsHidden = hidden
	if hidden {
		review.HiddenAt = &at
	} else {
		review.HiddenAt = nil
	}
	return true, nil
}

type fakeBookingFinder struct {
	rows map[uuid.UUID]*models.Booking
}

func (f *fakeBookingFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return booking, nil
}

type reviewsFixture struct {
	service   Service
	repo      *fakeReviewsRepo
	userID    uuid.UUID
	profileID uuid.UUID
	bookingID uuid.UUID
}

func newReviewsFixture(t *testing.T, status enums.BookingStatus) *reviewsFixture {
	t.Helper()

	userID := uuid.New()
	profileID := uuid.New()
	bookingID := uuid.New()

	bookings := &fakeBookingFinder{rows: map[uuid.UUID]*models.Booking{
		bookingID: {ID: bookingID, UserID: userID, VendorProfileID: profileID, Status: status},
	}}
	repo := newFakeReviewsRepo()

	svc, err := NewService(repo, bookings)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &reviewsFixture{service: svc, repo: repo, userID: userID, profileID: profileID, bookingID: bookingID}
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

func TestCreateReviewForCompletedBooking(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)
	comment := "great service"

	review, err := f.service.Create(context.Background(), f.userID, CreateInput{
		BookingID: f.bookingID,
		Rating:    5,
		Comment:   &comment,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if review.VendorProfileID != f.profileID {
		t.Fatalf("review should target the booking's vendor profile")
	}
	if review.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", review.Rating)
	}
}

func TestCreateReviewRequiresCompletedBooking(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusConfirmed)

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: 4})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateReviewOwnershipEnforced(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	_, err := f.service.Create(context.Background(), uuid.New(), CreateInput{BookingID: f.bookingID, Rating: 4})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: rating})
		assertCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestCreateReviewOnePerBooking(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	if _, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: 4}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: 2})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestListByProfileExcludesHidden(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	review, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.repo.rows[uuid.New()] = &models.Review{
		ID: uuid.New(), BookingID: uuid.New(), UserID: f.userID,
		VendorProfileID: f.profileID, Rating: 1, IsHidden: true,
		CreatedAt: time.Now().UTC(),
	}

	page, err := f.service.ListByProfile(context.Background(), f.profileID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 visible review, got %d", len(page.Items))
	}
	if page.Items[0].ID != review.ID {
		t.Fatalf("wrong review returned")
	}
}

func TestHideAndUnhideReview(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	review, err := f.service.Create(context.Background(), f.userID, CreateInput{BookingID: f.bookingID, Rating: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.service.Hide(context.Background(), review.ID); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if !f.repo.rows[review.ID].IsHidden || f.repo.rows[review.ID].HiddenAt == nil {
		t.Fatal("review should be hidden with a timestamp")
	}

	if err := f.service.Unhide(context.Background(), review.ID); err != nil {
		t.Fatalf("Unhide: %v", err)
	}
	if f.repo.rows[review.ID].IsHidden || f.repo.rows[review.ID].HiddenAt != nil {
		t.Fatal("review should be visible again")
	}
}

func TestHideUnknownReviewNotFound(t *testing.T) {
	f := newReviewsFixture(t, enums.BookingStatusCompleted)

	err := f.service.Hide(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
