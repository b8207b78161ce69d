package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

type fakeServicesRepo struct {
	rows map[uuid.UUID]*models.VendorService
}

func newFakeServicesRepo() *fakeServicesRepo {
	return &fakeServicesRepo{rows: make(map[uuid.UUID]*models.VendorService)}
}

func (f *fakeServicesRepo) Create(_ context.Context, svc *models.VendorService) (*models.VendorService, error) {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	copied := *svc
	f.rows[svc.ID] = &copied
	return svc, nil
}

func (f *fakeServicesRepo) FindByID(_ context.Context, id uuid.UUID) (*models.VendorService, error) {
	svc, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeServicesRepo) ListByProfile(_ context.Context, profileID uuid.UUID) ([]models.VendorService, error) {
	var out []models.VendorService
	for _, svc := range f.rows {
		if svc.VendorProfileID == profileID {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (f *fakeServicesRepo) CountByProfile(_ context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	for _, svc := range f.rows {
		if svc.VendorProfileID == profileID {
			count++
		}
	}
	return count, nil
}

func (f *fakeServicesRepo) Update(_ context.Context, svc *models.VendorService) error {
	copied := *svc
	f.rows[svc.ID] = &copied
	return nil
}

func (f *fakeServicesRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeServicesRepo) Search(_ context.Context, params searchParams) ([]models.VendorService, error) {
	var out []models.VendorService
	for _, svc := range f.rows {
		if !svc.IsPublished {
			continue
		}
		if params.City != "" && svc.City != params.City {
			continue
		}
		if params.Category != "" && svc.Category != params.Category {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

type fakeProfilesByUser struct {
	byUser map[uuid.UUID]*models.VendorProfile
}

func (f *fakeProfilesByUser) FindByUserID(_ context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	profile, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

type fakeSubsFinder struct {
	active map[uuid.UUID]*models.Subscription
}

func (f *fakeSubsFinder) GetActiveForProfile(_ context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	if sub, ok := f.active[profileID]; ok {
		return sub, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
}

type fakePlanFinder struct {
	plans map[uuid.UUID]*models.Plan
}

func (f *fakePlanFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type listingsFixture struct {
	svc      Service
	repo     *fakeServicesRepo
	profiles *fakeProfilesByUser
	subs     *fakeSubsFinder
	plans    *fakePlanFinder

	userID    uuid.UUID
	profileID uuid.UUID
	planID    uuid.UUID
}

func newListingsFixture(t *testing.T, maxServices int) *listingsFixture {
	t.Helper()
	userID := uuid.New()
	profileID := uuid.New()
	planID := uuid.New()

	repo := newFakeServicesRepo()
	profiles := &fakeProfilesByUser{byUser: map[uuid.UUID]*models.VendorProfile{
		userID: {ID: profileID, UserID: userID, Status: enums.VendorStatusApproved},
	}}
	subs := &fakeSubsFinder{active: map[uuid.UUID]*models.Subscription{
		profileID: {ID: uuid.New(), VendorProfileID: profileID, PlanID: planID},
	}}
	plans := &fakePlanFinder{plans: map[uuid.UUID]*models.Plan{
		planID: {ID: planID, Code: "VENDOR_BASIC", MaxServices: maxServices},
	}}

	svc, err := NewService(ServiceParams{Repo: repo, Profiles: profiles, Subscriptions: subs, Plans: plans})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &listingsFixture{
		svc: svc, repo: repo, profiles: profiles, subs: subs, plans: plans,
		userID: userID, profileID: profileID, planID: planID,
	}
}

func sampleInput() ServiceInput {
	return ServiceInput{
		Title:     "Wedding photography",
		Category:  "photography",
		City:      "Lahore",
		BasePrice: decimal.NewFromInt(500),
	}
}

func TestCreateService(t *testing.T) {
	fixture := newListingsFixture(t, 3)

	created, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.VendorProfileID != fixture.profileID {
		t.Fatalf("service linked to wrong profile")
	}
	if created.Currency != "usd" {
		t.Fatalf("expected default currency, got %q", created.Currency)
	}
}

func TestCreateServiceEnforcesPlanCap(t *testing.T) {
	fixture := newListingsFixture(t, 1)

	if _, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict at plan cap, got %v", err)
	}
}

func TestCreateServiceRequiresActiveSubscription(t *testing.T) {
	fixture := newListingsFixture(t, 3)
	delete(fixture.subs.active, fixture.profileID)

	_, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without subscription, got %v", err)
	}
}

func TestCreateServiceRequiresApprovedVendor(t *testing.T) {
	fixture := newListingsFixture(t, 3)
	fixture.profiles.byUser[fixture.userID].Status = enums.VendorStatusPendingApproval

	_, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for unapproved vendor, got %v", err)
	}
}

func TestUpdateServiceOwnership(t *testing.T) {
	fixture := newListingsFixture(t, 3)
	other := &models.VendorService{ID: uuid.New(), VendorProfileID: uuid.New(), Title: "Other"}
	fixture.repo.rows[other.ID] = other

	_, err := fixture.svc.Update(context.Background(), fixture.userID, other.ID, sampleInput())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign service, got %v", err)
	}
}

func TestDeleteService(t *testing.T) {
	fixture := newListingsFixture(t, 3)
	created, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := fixture.svc.Delete(context.Background(), fixture.userID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := fixture.repo.rows[created.ID]; ok {
		t.Fatalf("service row should be gone")
	}
}

func TestSearchOnlyPublished(t *testing.T) {
	fixture := newListingsFixture(t, 5)
	published := true
	input := sampleInput()
	input.IsPublished = &published
	if _, err := fixture.svc.Create(context.Background(), fixture.userID, input); err != nil {
		t.Fatalf("create published: %v", err)
	}
	if _, err := fixture.svc.Create(context.Background(), fixture.userID, sampleInput()); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	result, err := fixture.svc.Search(context.Background(), SearchParams{City: "Lahore", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected only the published service, got %d", len(result.Items))
	}
}
