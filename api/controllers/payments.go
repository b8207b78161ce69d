package controllers

import (
	"net/http"

	"github.com/rishtahub/rishta-backend/api/responses"
	"github.com/rishtahub/rishta-backend/internal/payments"
	"github.com/rishtahub/rishta-backend/pkg/db/models"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type checkoutResponse struct {
	Payment      *models.Payment `json:"payment"`
	GatewayRef   string          `json:"gateway_ref"`
	ClientSecret string          `json:"client_secret"`
}

// CreateCheckout opens a gateway session for the caller's selected plan.
func CreateCheckout(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := ctxUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout, err := svc.CreateCheckout(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Payment:      checkout.Payment,
			GatewayRef:   checkout.Session.GatewayRef,
			ClientSecret: checkout.Session.ClientSecret,
		})
	}
}
