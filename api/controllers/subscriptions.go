package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/api/middleware"
	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	"github.com/xht-dev/wholesale-backend/internal/subscriptions"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type createRenewalOrderRequest struct {
	PackageID uuid.UUID `json:"package_id" validate:"required"`
}

type paymentCallbackRequest struct {
	OrderNo string `json:"order_no" validate:"required"`
}

// RenewalPackages lists what a merchant can buy.
func RenewalPackages(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPackages(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RenewalOrderCreate(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRenewalOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateRenewalOrder(r.Context(), middleware.TenantIDFromContext(r.Context()), req.PackageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func RenewalOrderList(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, total, err := svc.ListOrders(r.Context(), middleware.TenantIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[models.RenewalOrder]{List: list, Total: total})
	}
}

// RenewalPaymentCallback is the webhook the payment gateway hits after a
// successful charge. Replays of the same order number are harmless.
func RenewalPaymentCallback(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentCallbackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.HandlePaymentCallback(r.Context(), validators.SanitizeString(req.OrderNo, 64))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
