package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v81"

	"github.com/rishtahub/rishta-backend/internal/payments"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

const correlationMetadataKey = "correlation_id"

// Service maps gateway webhook events onto payment verification.
type Service struct {
	payments payments.Service
}

// NewService builds the webhook service.
func NewService(paymentsSvc payments.Service) (*Service, error) {
	if paymentsSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	return &Service{payments: paymentsSvc}, nil
}

// HandleEvent reconciles a verified Stripe event. Events this platform does
// not care about are acknowledged without action.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
	default:
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}

	correlationID := intent.Metadata[correlationMetadataKey]
	if correlationID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent missing correlation id")
	}

	if event.Type == stripe.EventTypePaymentIntentSucceeded {
		_, err := s.payments.VerifySuccess(ctx, correlationID)
		return err
	}

	reason := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}
	_, err := s.payments.VerifyFailure(ctx, correlationID, reason)
	return err
}
