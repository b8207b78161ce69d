package vendoradmin

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

type fakeAdminRepo struct {
	byID map[uuid.UUID]*models.VendorProfile
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byID: make(map[uuid.UUID]*models.VendorProfile)}
}

func (f *fakeAdminRepo) FindByID(_ context.Context, id uuid.UUID) (*models.VendorProfile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeAdminRepo) Update(_ context.Context, profile *models.VendorProfile) error {
	f.byID[profile.ID] = profile
	return nil
}

func (f *fakeAdminRepo) ListByStatus(_ context.Context, status enums.VendorStatus, _ *pagination.Cursor, limit int) ([]models.VendorProfile, error) {
	var out []models.VendorProfile
	for _, profile := range f.byID {
		if profile.Status == status {
			out = append(out, *profile)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type recordingBus struct {
	published []any
}

func (b *recordingBus) Publish(_ context.Context, event any) error {
	b.published = append(b.published, event)
	return nil
}

func seedProfile(repo *fakeAdminRepo, status enums.VendorStatus) *models.VendorProfile {
	profile := &models.VendorProfile{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: status,
	}
	repo.byID[profile.ID] = profile
	return profile
}

func newTestService(t *testing.T) (Service, *fakeAdminRepo, *recordingBus) {
	t.Helper()
	repo := newFakeAdminRepo()
	bus := &recordingBus{}
	svc, err := NewService(ServiceParams{Repo: repo, Lister: repo, Bus: bus})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, bus
}

func TestApproveTransitionsAndPublishes(t *testing.T) {
	svc, repo, bus := newTestService(t)
	profile := seedProfile(repo, enums.VendorStatusPendingApproval)
	adminID := uuid.New()

	updated, err := svc.Apply(context.Background(), adminID, profile.ID, enums.VendorAdminActionApprove, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved, got %s", updated.Status)
	}
	if updated.ReviewedByID == nil || *updated.ReviewedByID != adminID {
		t.Fatal("expected reviewer recorded")
	}
	if updated.ApprovedAt == nil {
		t.Fatal("expected approval timestamp")
	}

	var sawStatus, sawNotify bool
	for _, event := range bus.published {
		switch e := event.(type) {
		case events.VendorStatusChanged:
			sawStatus = e.To == enums.VendorStatusApproved
		case events.Notify:
			sawNotify = e.Type == enums.NotificationTypeVendorApproved && e.UserID == profile.UserID
		}
	}
	if !sawStatus || !sawNotify {
		t.Fatalf("expected status + notify events, got %#v", bus.published)
	}
}

func TestApproveOutOfOrderFails(t *testing.T) {
	svc, repo, _ := newTestService(t)

	for _, status := range []enums.VendorStatus{
		enums.VendorStatusRegistered,
		enums.VendorStatusPlanSelected,
		enums.VendorStatusProfileCompleted,
		enums.VendorStatusRejected,
	} {
		profile := seedProfile(repo, status)
		_, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionApprove, "")
		if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
			t.Fatalf("approve from %s: expected state conflict, got %v", status, err)
		}
		if repo.byID[profile.ID].Status != status {
			t.Fatalf("status must be unchanged after refused transition, got %s", repo.byID[profile.ID].Status)
		}
	}
}

func TestRejectRecordsReason(t *testing.T) {
	svc, repo, _ := newTestService(t)
	profile := seedProfile(repo, enums.VendorStatusPendingApproval)

	updated, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionReject, "Incomplete photos")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "Incomplete photos" {
		t.Fatal("expected rejection reason persisted")
	}
}

func TestRejectReasonTooLong(t *testing.T) {
	svc, repo, _ := newTestService(t)
	profile := seedProfile(repo, enums.VendorStatusPendingApproval)

	_, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionReject, strings.Repeat("x", 501))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSuspendAndUnsuspend(t *testing.T) {
	svc, repo, _ := newTestService(t)
	profile := seedProfile(repo, enums.VendorStatusApproved)

	updated, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionSuspend, "ToS violation")
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if updated.Status != enums.VendorStatusSuspended {
		t.Fatalf("expected suspended, got %s", updated.Status)
	}

	updated, err = svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionUnsuspend, "")
	if err != nil {
		t.Fatalf("unsuspend: %v", err)
	}
	if updated.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved after unsuspend, got %s", updated.Status)
	}
	if updated.SuspendedReason != nil {
		t.Fatal("unsuspend should clear the suspension reason")
	}
}

func TestApplyUnknownProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Apply(context.Background(), uuid.New(), uuid.New(), enums.VendorAdminActionApprove, "")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPending(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedProfile(repo, enums.VendorStatusPendingApproval)
	seedProfile(repo, enums.VendorStatusPendingApproval)
	seedProfile(repo, enums.VendorStatusApproved)

	page, err := svc.ListPending(context.Background(), pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(page.Profiles) != 2 {
		t.Fatalf("expected 2 pending vendors, got %d", len(page.Profiles))
	}
}

type fakeProcessedPayments struct {
	byProfile map[uuid.UUID]*models.Payment
}

func (f *fakeProcessedPayments) FindLatestProcessedByProfile(_ context.Context, profileID uuid.UUID) (*models.Payment, error) {
	payment, ok := f.byProfile[profileID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

type fakeActivator struct {
	active    map[uuid.UUID]*models.Subscription
	activated []uuid.UUID
}

func (f *fakeActivator) GetActiveForProfile(_ context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	if sub, ok := f.active[profileID]; ok {
		return sub, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
}

func (f *fakeActivator) ActivateFromPayment(_ context.Context, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	sub := &models.Subscription{ID: uuid.New(), VendorProfileID: profileID, PlanID: planID}
	f.active[profileID] = sub
	f.activated = append(f.activated, profileID)
	return sub, nil
}

func TestApproveActivatesPaidSubscription(t *testing.T) {
	repo := newFakeAdminRepo()
	bus := &recordingBus{}
	profile := seedProfile(repo, enums.VendorStatusPendingApproval)

	payment := &models.Payment{ID: uuid.New(), VendorProfileID: profile.ID, PlanID: uuid.New()}
	payments := &fakeProcessedPayments{byProfile: map[uuid.UUID]*models.Payment{profile.ID: payment}}
	activator := &fakeActivator{active: map[uuid.UUID]*models.Subscription{}}

	svc, err := NewService(ServiceParams{
		Repo:          repo,
		Lister:        repo,
		Bus:           bus,
		Payments:      payments,
		Subscriptions: activator,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionApprove, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(activator.activated) != 1 {
		t.Fatalf("expected activation on approval, got %d", len(activator.activated))
	}
}

func TestApproveSkipsActivationWhenAlreadyActive(t *testing.T) {
	repo := newFakeAdminRepo()
	bus := &recordingBus{}
	profile := seedProfile(repo, enums.VendorStatusPendingApproval)

	payment := &models.Payment{ID: uuid.New(), VendorProfileID: profile.ID, PlanID: uuid.New()}
	payments := &fakeProcessedPayments{byProfile: map[uuid.UUID]*models.Payment{profile.ID: payment}}
	activator := &fakeActivator{active: map[uuid.UUID]*models.Subscription{
		profile.ID: {ID: uuid.New(), VendorProfileID: profile.ID},
	}}

	svc, err := NewService(ServiceParams{
		Repo:          repo,
		Lister:        repo,
		Bus:           bus,
		Payments:      payments,
		Subscriptions: activator,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Apply(context.Background(), uuid.New(), profile.ID, enums.VendorAdminActionApprove, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(activator.activated) != 0 {
		t.Fatalf("expected no re-activation, got %d", len(activator.activated))
	}
}
