package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

type fakePaymentsRepo struct {
	rows map[uuid.UUID]*models.Payment
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{rows: make(map[uuid.UUID]*models.Payment)}
}

func (f *fakePaymentsRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakePaymentsRepo) Create(_ context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.rows[payment.ID] = &copied
	return nil
}

func (f *fakePaymentsRepo) FindByCorrelationID(_ context.Context, correlationID string) (*models.Payment, error) {
	for _, payment := range f.rows {
		if payment.CorrelationID == correlationID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentsRepo) SetGatewayRef(_ context.Context, id uuid.UUID, gatewayRef string) error {
	if payment, ok := f.rows[id]; ok {
		ref := gatewayRef
		payment.GatewayRef = &ref
	}
	return nil
}

func (f *fakePaymentsRepo) MarkProcessed(_ context.Context, id uuid.UUID, processedAt time.Time) (bool, error) {
	payment, ok := f.rows[id]
	if !ok || payment.Status != enums.PaymentStatusPending {
		return false, nil
	}
	payment.Status = enums.PaymentStatusProcessed
	at := processedAt
	payment.ProcessedAt = &at
	return true, nil
}

func (f *fakePaymentsRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	payment, ok := f.rows[id]
	if !ok || payment.Status != enums.PaymentStatusPending {
		return false, nil
	}
	payment.Status = enums.PaymentStatusFailed
	payment.FailureReason = &reason
	return true, nil
}

func (f *fakePaymentsRepo) FindLatestProcessedByProfile(_ context.Context, profileID uuid.UUID) (*models.Payment, error) {
	var latest *models.Payment
	for _, payment := range f.rows {
		if payment.VendorProfileID != profileID || payment.Status != enums.PaymentStatusProcessed {
			continue
		}
		if latest == nil || (payment.ProcessedAt != nil && latest.ProcessedAt != nil && payment.ProcessedAt.After(*latest.ProcessedAt)) {
			latest = payment
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

type fakeProfiles struct {
	byUser map[uuid.UUID]*models.VendorProfile
}

func (f *fakeProfiles) FindByUserID(_ context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	profile, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

type fakePlans struct {
	plans map[uuid.UUID]*models.Plan
}

func (f *fakePlans) FindByID(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type fakeGateway struct {
	sessions int
	fail     bool
}

func (f *fakeGateway) CreateCheckout(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if f.fail {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")
	}
	f.sessions++
	return &CheckoutSession{
		GatewayRef:   "pi_" + params.CorrelationID,
		ClientSecret: "secret_" + params.CorrelationID,
	}, nil
}

// fakeTxRunner snapshots the in-memory payment rows before fn and restores
// them on error, so tests observe the rollback the real client performs.
type fakeTxRunner struct {
	repo *fakePaymentsRepo
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := make(map[uuid.UUID]*models.Payment, len(f.repo.rows))
	for id, payment := range f.repo.rows {
		copied := *payment
		snapshot[id] = &copied
	}
	if err := fn(nil); err != nil {
		f.repo.rows = snapshot
		return err
	}
	return nil
}

type fakeSubscriptions struct {
	activations []uuid.UUID
	active      map[uuid.UUID]*models.Subscription
	failNext    bool
}

func (f *fakeSubscriptions) ActivateFromPayment(_ context.Context, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	return f.activate(profileID, planID, paymentID)
}

func (f *fakeSubscriptions) ActivateFromPaymentTx(_ context.Context, _ *gorm.DB, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	return f.activate(profileID, planID, paymentID)
}

func (f *fakeSubscriptions) activate(profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	if f.failNext {
		f.failNext = false
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activating subscription")
	}
	if f.active == nil {
		f.active = make(map[uuid.UUID]*models.Subscription)
	}
	sub := &models.Subscription{
		ID:              uuid.New(),
		VendorProfileID: profileID,
		PlanID:          planID,
		PaymentID:       &paymentID,
		Status:          enums.SubscriptionStatusActive,
	}
	f.active[profileID] = sub
	f.activations = append(f.activations, paymentID)
	return sub, nil
}

func (f *fakeSubscriptions) GetActiveForProfile(_ context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.active[profileID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
	}
	return sub, nil
}

func (f *fakeSubscriptions) CancelActive(_ context.Context, _ uuid.UUID) (*models.Subscription, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
}

func (f *fakeSubscriptions) ExpireDue(_ context.Context, _ time.Time, _ int) (int, error) {
	return 0, nil
}

type fixture struct {
	svc      Service
	repo     *fakePaymentsRepo
	gateway  *fakeGateway
	subs     *fakeSubscriptions
	userID   uuid.UUID
	plan     *models.Plan
	profile  *models.VendorProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	plan := &models.Plan{
		ID:           uuid.New(),
		Code:         "VENDOR_BASIC",
		Price:        decimal.NewFromInt(49),
		Currency:     "usd",
		DurationDays: 30,
	}
	userID := uuid.New()
	profile := &models.VendorProfile{
		ID:             uuid.New(),
		UserID:         userID,
		SelectedPlanID: &plan.ID,
		Status:         enums.VendorStatusPlanSelected,
	}

	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{}
	subs := &fakeSubscriptions{}

	svc, err := NewService(ServiceParams{
		Repo:              repo,
		ProfilesRepo:      &fakeProfiles{byUser: map[uuid.UUID]*models.VendorProfile{userID: profile}},
		PlansRepo:         &fakePlans{plans: map[uuid.UUID]*models.Plan{plan.ID: plan}},
		Gateway:           gateway,
		Subscriptions:     subs,
		TransactionRunner: &fakeTxRunner{repo: repo},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &fixture{svc: svc, repo: repo, gateway: gateway, subs: subs, userID: userID, plan: plan, profile: profile}
}

func TestCreateCheckoutPersistsPendingBeforeGateway(t *testing.T) {
	fx := newFixture(t)

	checkout, err := fx.svc.CreateCheckout(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if checkout.Payment.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", checkout.Payment.Status)
	}
	if checkout.Payment.CorrelationID == "" {
		t.Fatal("expected correlation id")
	}
	if checkout.Session.GatewayRef == "" || checkout.Session.ClientSecret == "" {
		t.Fatal("expected gateway session details")
	}

	stored := fx.repo.rows[checkout.Payment.ID]
	if stored.GatewayRef == nil || *stored.GatewayRef != checkout.Session.GatewayRef {
		t.Fatal("expected gateway ref persisted")
	}
}

func TestCreateCheckoutWithoutPlanSelection(t *testing.T) {
	fx := newFixture(t)
	fx.profile.SelectedPlanID = nil

	_, err := fx.svc.CreateCheckout(context.Background(), fx.userID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateCheckoutGatewayFailureMarksPayment(t *testing.T) {
	fx := newFixture(t)
	fx.gateway.fail = true

	_, err := fx.svc.CreateCheckout(context.Background(), fx.userID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	var sawFailed bool
	for _, payment := range fx.repo.rows {
		if payment.Status == enums.PaymentStatusFailed {
			sawFailed = true
		}
	}
	if !sawFailed {
		t.Fatal("expected pending payment marked failed after gateway error")
	}
}

func TestVerifySuccessActivatesSubscription(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	checkout, err := fx.svc.CreateCheckout(ctx, fx.userID)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	payment, err := fx.svc.VerifySuccess(ctx, checkout.Payment.CorrelationID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if payment.Status != enums.PaymentStatusProcessed {
		t.Fatalf("expected processed, got %s", payment.Status)
	}
	if len(fx.subs.activations) != 1 || fx.subs.activations[0] != payment.ID {
		t.Fatalf("expected one activation for payment, got %v", fx.subs.activations)
	}
}

func TestVerifySuccessIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	checkout, err := fx.svc.CreateCheckout(ctx, fx.userID)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	if _, err := fx.svc.VerifySuccess(ctx, checkout.Payment.CorrelationID); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	activationsBefore := len(fx.subs.activations)

	_, err = fx.svc.VerifySuccess(ctx, checkout.Payment.CorrelationID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodePaymentProcessed {
		t.Fatalf("expected PAYMENT_ALREADY_PROCESSED, got %v", err)
	}
	if len(fx.subs.activations) != activationsBefore {
		t.Fatal("replayed verification must not activate again")
	}
}

func TestVerifySuccessRetriesAfterActivationFailure(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	checkout, err := fx.svc.CreateCheckout(ctx, fx.userID)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	fx.subs.failNext = true
	if _, err := fx.svc.VerifySuccess(ctx, checkout.Payment.CorrelationID); err == nil {
		t.Fatal("expected verification to fail when activation fails")
	}

	stored := fx.repo.rows[checkout.Payment.ID]
	if stored.Status != enums.PaymentStatusPending {
		t.Fatalf("expected payment rolled back to pending, got %s", stored.Status)
	}
	if len(fx.subs.activations) != 0 {
		t.Fatal("failed activation must not be recorded")
	}

	payment, err := fx.svc.VerifySuccess(ctx, checkout.Payment.CorrelationID)
	if err != nil {
		t.Fatalf("retry verify: %v", err)
	}
	if payment.Status != enums.PaymentStatusProcessed {
		t.Fatalf("expected processed after retry, got %s", payment.Status)
	}
	if len(fx.subs.activations) != 1 || fx.subs.activations[0] != payment.ID {
		t.Fatalf("expected exactly one activation for payment, got %v", fx.subs.activations)
	}
}

func TestVerifyUnknownCorrelation(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.VerifySuccess(context.Background(), uuid.NewString())
	if pkgerrors.CodeOf(err) != pkgerrors.CodePaymentNotFound {
		t.Fatalf("expected PAYMENT_NOT_FOUND, got %v", err)
	}
}

func TestVerifyFailureRecordsReason(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	checkout, err := fx.svc.CreateCheckout(ctx, fx.userID)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	payment, err := fx.svc.VerifyFailure(ctx, checkout.Payment.CorrelationID, "card_declined")
	if err != nil {
		t.Fatalf("verify failure: %v", err)
	}
	if payment.Status != enums.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", payment.Status)
	}
	if len(fx.subs.activations) != 0 {
		t.Fatal("failed payment must not activate a subscription")
	}
}
