package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"

	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	pkgstripe "github.com/rishtahub/rishta-backend/pkg/stripe"
)

const correlationMetadataKey = "correlation_id"

var decimalHundred = decimal.NewFromInt(100)

// StripeGateway creates payment intents against Stripe.
type StripeGateway struct {
	client *pkgstripe.Client
}

// NewStripeGateway wires the gateway to an initialized Stripe client.
func NewStripeGateway(client *pkgstripe.Client) (*StripeGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &StripeGateway{client: client}, nil
}

// CreateCheckout opens a payment intent carrying the correlation ID in its
// metadata. Amounts are converted to the smallest currency unit.
func (g *StripeGateway) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if params.CorrelationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "correlation id is required")
	}

	cents := params.Amount.Mul(decimalHundred).IntPart()

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.Description != "" {
		intentParams.Description = stripe.String(params.Description)
	}
	intentParams.AddMetadata(correlationMetadataKey, params.CorrelationID)

	intent, err := paymentintent.New(intentParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	return &CheckoutSession{
		GatewayRef:   intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
