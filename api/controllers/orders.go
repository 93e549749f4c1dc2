package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/api/middleware"
	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	"github.com/xht-dev/wholesale-backend/internal/orders"
	"github.com/xht-dev/wholesale-backend/internal/settlement"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type orderItemRequest struct {
	GoodsID    uuid.UUID `json:"goods_id" validate:"required"`
	CountBig   int       `json:"count_big" validate:"min=0"`
	CountSmall int       `json:"count_small" validate:"min=0"`
}

type createOrderRequest struct {
	CustomerID    uuid.UUID          `json:"customer_id" validate:"required"`
	OrderType     string             `json:"order_type" validate:"omitempty,oneof=customer agent"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=credit wechat cash"`
	Remark        string             `json:"remark" validate:"max=500"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentMethod, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := orders.CreateOrderInput{
			CustomerID:    req.CustomerID,
			PaymentMethod: paymentMethod,
			Remark:        validators.SanitizeString(req.Remark, 500),
		}
		if req.OrderType != "" {
			orderType, err := enums.ParseOrderType(req.OrderType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type"))
				return
			}
			input.OrderType = orderType
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, orders.OrderItemInput{
				GoodsID:    item.GoodsID,
				CountBig:   item.CountBig,
				CountSmall: item.CountSmall,
			})
		}

		order, err := svc.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter orders.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
			customerID, err := validators.ParsePathUUID(raw, "customer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.CustomerID = &customerID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			code, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status must be numeric"))
				return
			}
			status, err := enums.ParseOrderStatus(code)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		list, total, err := svc.List(r.Context(), middleware.TenantIDFromContext(r.Context()), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[models.Order]{List: list, Total: total})
	}
}

func OrderConfirm(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderComplete settles the order, posting debt for credit sales.
func OrderComplete(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CompleteOrder(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
