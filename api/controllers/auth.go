package controllers

import (
	"net/http"

	"github.com/xht-dev/wholesale-backend/api/responses"
	"github.com/xht-dev/wholesale-backend/api/validators"
	internalauth "github.com/xht-dev/wholesale-backend/internal/auth"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

type registerRequest struct {
	Mobile   string `json:"mobile" validate:"required,min=5,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Nickname string `json:"nickname" validate:"max=50"`
	ShopName string `json:"shop_name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"max=20"`
}

type loginRequest struct {
	Mobile   string `json:"mobile" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func AuthRegister(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), internalauth.RegisterInput{
			Mobile:   validators.SanitizeString(req.Mobile, 20),
			Password: req.Password,
			Nickname: validators.SanitizeString(req.Nickname, 50),
			ShopName: validators.SanitizeString(req.ShopName, 100),
			Phone:    validators.SanitizeString(req.Phone, 20),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func AuthLogin(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), validators.SanitizeString(req.Mobile, 20), req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
