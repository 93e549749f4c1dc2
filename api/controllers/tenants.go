package controllers

import (
	"net/http"

	"github.com/xht-dev/wholesale-backend/api/middleware"
	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

type updateShopRequest struct {
	Name     string                 `json:"name" validate:"required,max=100"`
	Phone    *string                `json:"phone"`
	Settings *models.TenantSettings `json:"settings"`
}

func ShopProfile(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := svc.Get(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

func ShopUpdate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateShopRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tenants.UpdateInfoInput{
			Name:     validators.SanitizeString(req.Name, 100),
			Phone:    req.Phone,
			Settings: req.Settings,
		}
		tenant, err := svc.UpdateInfo(r.Context(), middleware.TenantIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

// ShopMembership reports the subscription status the mini-program banner shows.
func ShopMembership(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Membership(r.Context(), middleware.TenantIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
