package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutParams describes the charge handed to the payment gateway. The
// correlation ID travels in gateway metadata so callbacks resolve back to
// the pending payment row.
type CheckoutParams struct {
	CorrelationID string
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// CheckoutSession is the gateway-side handle returned to the client.
type CheckoutSession struct {
	GatewayRef   string
	ClientSecret string
}

// Gateway abstracts the external payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}
