package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"

	"github.com/rishtahub/rishta-backend/internal/payments"
	"github.com/rishtahub/rishta-backend/pkg/db/models"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

type fakePaymentsService struct {
	successes []string
	failures  []string
	err       error
}

func (f *fakePaymentsService) CreateCheckout(_ context.Context, _ uuid.UUID) (*payments.Checkout, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (f *fakePaymentsService) VerifySuccess(_ context.Context, correlationID string) (*models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.successes = append(f.successes, correlationID)
	return &models.Payment{CorrelationID: correlationID}, nil
}

func (f *fakePaymentsService) VerifyFailure(_ context.Context, correlationID, _ string) (*models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.failures = append(f.failures, correlationID)
	return &models.Payment{CorrelationID: correlationID}, nil
}

func paymentIntentEvent(t *testing.T, eventType stripe.EventType, correlationID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       "pi_123",
		"metadata": map[string]string{"correlation_id": correlationID},
	})
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return &stripe.Event{
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventSucceededVerifiesPayment(t *testing.T) {
	fake := &fakePaymentsService{}
	svc, err := NewService(fake)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	correlationID := uuid.NewString()
	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, correlationID)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(fake.successes) != 1 || fake.successes[0] != correlationID {
		t.Fatalf("expected success verification, got %v", fake.successes)
	}
}

func TestHandleEventFailedRecordsFailure(t *testing.T) {
	fake := &fakePaymentsService{}
	svc, err := NewService(fake)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	correlationID := uuid.NewString()
	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, correlationID)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(fake.failures) != 1 {
		t.Fatalf("expected failure verification, got %v", fake.failures)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	fake := &fakePaymentsService{}
	svc, err := NewService(fake)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	event := &stripe.Event{Type: stripe.EventTypeCustomerCreated, Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(fake.successes)+len(fake.failures) != 0 {
		t.Fatal("unrelated events must not trigger verification")
	}
}

func TestHandleEventMissingCorrelation(t *testing.T) {
	svc, err := NewService(&fakePaymentsService{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, "")
	if err := svc.HandleEvent(context.Background(), event); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type guardStore struct {
	keys map[string]time.Time
}

func (g *guardStore) Get(_ context.Context, key string) (string, error) {
	if _, ok := g.keys[key]; ok {
		return "1", nil
	}
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "missing")
}

func (g *guardStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if g.keys == nil {
		g.keys = make(map[string]time.Time)
	}
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = time.Now()
	return true, nil
}

func (g *guardStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (g *guardStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(g.keys, key)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	guard, err := NewIdempotencyGuard(&guardStore{}, time.Hour, "stripe-webhooks")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("first event should be unseen, seen=%v err=%v", seen, err)
	}

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || !seen {
		t.Fatalf("replayed event should be seen, seen=%v err=%v", seen, err)
	}

	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("after delete event should be unseen again, seen=%v err=%v", seen, err)
	}
}
