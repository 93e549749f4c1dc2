package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/api/middleware"
	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type goodsRequest struct {
	CategoryID          *uuid.UUID `json:"category_id"`
	Name                string     `json:"name" validate:"required,max=100"`
	ImgURL              string     `json:"img_url" validate:"max=500"`
	IsMultiUnit         bool       `json:"is_multi_unit"`
	UnitSmallName       string     `json:"unit_small_name" validate:"required,max=20"`
	UnitSmallPriceCents int64      `json:"unit_small_price_cents" validate:"min=0"`
	UnitBigName         string     `json:"unit_big_name" validate:"max=20"`
	UnitBigPriceCents   int64      `json:"unit_big_price_cents" validate:"min=0"`
	Rate                int        `json:"rate" validate:"min=0"`
	IsOnSale            *bool      `json:"is_on_sale"`
}

type adjustStockRequest struct {
	CountBig   int `json:"count_big"`
	CountSmall int `json:"count_small"`
}

type toggleOnSaleRequest struct {
	IsOnSale bool `json:"is_on_sale"`
}

type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	SortOrder int    `json:"sort_order"`
}

func (req goodsRequest) toInput() goods.UpsertGoodsInput {
	return goods.UpsertGoodsInput{
		CategoryID:          req.CategoryID,
		Name:                validators.SanitizeString(req.Name, 100),
		ImgURL:              validators.SanitizeString(req.ImgURL, 500),
		IsMultiUnit:         req.IsMultiUnit,
		UnitSmallName:       validators.SanitizeString(req.UnitSmallName, 20),
		UnitSmallPriceCents: req.UnitSmallPriceCents,
		UnitBigName:         validators.SanitizeString(req.UnitBigName, 20),
		UnitBigPriceCents:   req.UnitBigPriceCents,
		Rate:                req.Rate,
		IsOnSale:            req.IsOnSale,
	}
}

func GoodsCreate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req goodsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func GoodsUpdate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodsId"), "goodsId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req goodsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), middleware.TenantIDFromContext(r.Context()), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func GoodsDetail(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodsId"), "goodsId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), middleware.TenantIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"goods":         item,
			"stock_display": svc.FormatStock(item),
		})
	}
}

func GoodsList(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := goods.ListFilter{
			Keyword:    validators.SanitizeString(r.URL.Query().Get("keyword"), 100),
			OnSaleOnly: r.URL.Query().Get("on_sale") == "true",
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := validators.ParsePathUUID(raw, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.CategoryID = &categoryID
		}

		list, total, err := svc.List(r.Context(), middleware.TenantIDFromContext(r.Context()), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[models.Goods]{List: list, Total: total})
	}
}

func GoodsDelete(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodsId"), "goodsId")
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

func GoodsAdjustStock(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodsId"), "goodsId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AdjustStock(r.Context(), middleware.TenantIDFromContext(r.Context()), id, req.CountBig, req.CountSmall)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"goods":         item,
			"stock_display": svc.FormatStock(item),
		})
	}
}

func GoodsToggleOnSale(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodsId"), "goodsId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req toggleOnSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ToggleOnSale(r.Context(), middleware.TenantIDFromContext(r.Context()), id, req.IsOnSale); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"is_on_sale": req.IsOnSale})
	}
}

func CategoryCreate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), middleware.TenantIDFromContext(r.Context()), validators.SanitizeString(req.Name, 50), req.SortOrder)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func CategoryList(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListCategories(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CategoryDelete(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), middleware.TenantIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
