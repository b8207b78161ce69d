package controllers

import (
	"net/http"

	"github.com/rishtahub/rishta-backend/api/responses"
	"github.com/rishtahub/rishta-backend/api/validators"
	"github.com/rishtahub/rishta-backend/internal/vendoradmin"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type vendorActionRequest struct {
	Action string  `json:"action" validate:"required"`
	Reason *string `json:"reason,omitempty"`
}

type vendorReasonRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// AdminVendorsPending pages through profiles awaiting review, oldest first.
func AdminVendorsPending(svc vendoradmin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor admin service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPending(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminVendorAction applies an arbitrary review decision carried in the body.
func AdminVendorAction(svc vendoradmin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor admin service unavailable"))
			return
		}

		var body vendorActionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseVendorAdminAction(body.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}

		applyVendorAction(svc, logg, action, body.Reason)(w, r)
	}
}

// AdminVendorDecision fixes the action at route registration time, so the
// approve/reject/suspend endpoints stay body-optional.
func AdminVendorDecision(svc vendoradmin.Service, action enums.VendorAdminAction, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor admin service unavailable"))
			return
		}

		var reason *string
		if r.ContentLength > 0 {
			var body vendorReasonRequest
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			reason = body.Reason
		}

		applyVendorAction(svc, logg, action, reason)(w, r)
	}
}

func applyVendorAction(svc vendoradmin.Service, logg *logger.Logger, action enums.VendorAdminAction, reason *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := ctxUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profileID, err := pathID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reasonText := ""
		if reason != nil {
			reasonText = *reason
		}

		profile, err := svc.Apply(r.Context(), adminID, profileID, action, reasonText)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
