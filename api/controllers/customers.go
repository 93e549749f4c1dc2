package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/api/middleware"
	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	"github.com/xht-dev/wholesale-backend/internal/customers"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type ledgerLister interface {
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, params pagination.Params) ([]models.DebtLog, int64, error)
}

type customerRequest struct {
	Alias            string `json:"alias" validate:"required,max=100"`
	Phone            string `json:"phone" validate:"max=20"`
	Address          string `json:"address" validate:"max=200"`
	Remark           string `json:"remark" validate:"max=500"`
	CreditLimitCents int64  `json:"credit_limit_cents" validate:"min=0"`
}

type repayRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Remark      string `json:"remark" validate:"max=500"`
}

func (req customerRequest) toInput() customers.UpsertCustomerInput {
	return customers.UpsertCustomerInput{
		Alias:            validators.SanitizeString(req.Alias, 100),
		Phone:            validators.SanitizeString(req.Phone, 20),
		Address:          validators.SanitizeString(req.Address, 200),
		Remark:           validators.SanitizeString(req.Remark, 500),
		CreditLimitCents: req.CreditLimitCents,
	}
}

func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Update(r.Context(), middleware.TenantIDFromContext(r.Context()), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// CustomerDetail includes the recent debt activity next to the profile.
func CustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		keyword := validators.SanitizeString(r.URL.Query().Get("keyword"), 100)

		list, total, err := svc.List(r.Context(), middleware.TenantIDFromContext(r.Context()), keyword, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[models.Customer]{List: list, Total: total})
	}
}

func CustomerDelete(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.TenantIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CustomerRepay records a manual repayment against the customer's debt.
func CustomerRepay(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req repayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Repay(r.Context(), middleware.TenantIDFromContext(r.Context()), id, req.AmountCents, validators.SanitizeString(req.Remark, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func CustomerDebtLogs(svc ledgerLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, total, err := svc.ListByCustomer(r.Context(), middleware.TenantIDFromContext(r.Context()), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[models.DebtLog]{List: list, Total: total})
	}
}
