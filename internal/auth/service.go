// Package auth implements merchant registration and login for the
// mini-program side of the platform.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/internal/users"
	"github.com/xht-dev/wholesale-backend/pkg/auth"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

// Service handles merchant account registration and login.
type Service interface {
	// Register creates the merchant user and their pending shop in one
	// transaction and signs the user in.
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, mobile, password string) (*Session, error)
}

// RegisterInput carries the merchant sign-up form.
type RegisterInput struct {
	Mobile   string
	Password string
	Nickname string
	ShopName string
	Phone    string
}

type service struct {
	tx      txRunner
	users   users.Repository
	tenants tenants.Service
	jwtCfg  config.JWTConfig
	passCfg config.PasswordConfig
	now     func() time.Time
}

// NewService wires the merchant auth service.
func NewService(tx txRunner, usersRepo users.Repository, tenantsSvc tenants.Service, jwtCfg config.JWTConfig, passCfg config.PasswordConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tenantsSvc == nil {
		return nil, fmt.Errorf("tenants service required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		tx:      tx,
		users:   usersRepo,
		tenants: tenantsSvc,
		jwtCfg:  jwtCfg,
		passCfg: passCfg,
		now:     time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if input.Mobile == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile required")
	}
	if len(input.Password) < 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}
	if input.ShopName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}

	hash, err := security.HashPassword(input.Password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	nickname := input.Nickname
	if nickname == "" {
		nickname = input.ShopName
	}
	user := &models.User{
		ID:           uuid.New(),
		Mobile:       input.Mobile,
		Nickname:     nickname,
		PasswordHash: hash,
		Role:         enums.UserRoleMerchant,
	}

	var tenant *models.Tenant
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		tenant, err = s.tenants.Onboard(ctx, tx, tenants.OnboardInput{
			OwnerUserID: user.ID,
			Name:        input.ShopName,
			Phone:       input.Phone,
		})
		if err != nil {
			return err
		}
		return s.users.WithTx(tx).BindTenant(ctx, user.ID, tenant.ID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_mobile") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "mobile already registered")
		}
		return nil, err
	}
	user.TenantID = &tenant.ID

	token, err := s.mintToken(user, &tenant.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user, Tenant: tenant}, nil
}

func (s *service) Login(ctx context.Context, mobile, password string) (*Session, error) {
	if mobile == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile and password required")
	}

	user, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid mobile or password")
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid mobile or password")
	}

	var tenant *models.Tenant
	if user.Role == enums.UserRoleMerchant {
		if user.TenantID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no shop bound to this account")
		}
		tenant, err = s.tenants.Get(ctx, *user.TenantID)
		if err != nil {
			return nil, err
		}
		if err := checkTenantUsable(tenant, s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, err
	}

	token, err := s.mintToken(user, user.TenantID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user, Tenant: tenant}, nil
}

func (s *service) mintToken(user *models.User, tenantID *uuid.UUID) (string, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: tenantID,
		Role:     user.Role,
		Audience: auth.AudienceMerchant,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return token, nil
}

func checkTenantUsable(tenant *models.Tenant, now time.Time) error {
	switch tenant.Status {
	case enums.TenantStatusPending:
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop is under review")
	case enums.TenantStatusRejected:
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop registration was rejected")
	case enums.TenantStatusFrozen:
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop is frozen")
	case enums.TenantStatusExpired:
		return pkgerrors.New(pkgerrors.CodeForbidden, "subscription expired")
	}
	if tenant.IsExpired(now) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "subscription expired")
	}
	return nil
}
