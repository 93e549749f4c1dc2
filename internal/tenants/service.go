package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

// MembershipStatus summarizes where a tenant stands with their subscription.
type MembershipStatus struct {
	Status             enums.TenantStatus `json:"status"`
	EffectiveExpiredAt time.Time          `json:"effective_expired_at"`
	IsExpired          bool               `json:"is_expired"`
	DaysLeft           int                `json:"days_left"`
}

// Service manages merchant account lifecycle.
type Service interface {
	// Onboard creates the trial-period tenant for a fresh merchant user.
	// Review happens in the back office; the tenant starts as pending.
	Onboard(ctx context.Context, tx *gorm.DB, input OnboardInput) (*models.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Tenant, error)
	UpdateInfo(ctx context.Context, id uuid.UUID, input UpdateInfoInput) (*models.Tenant, error)
	Membership(ctx context.Context, id uuid.UUID) (*MembershipStatus, error)
	List(ctx context.Context, status *enums.TenantStatus, params pagination.Params) ([]models.Tenant, int64, error)
	// Review moves a pending tenant to active or rejected; freeze and
	// unfreeze toggle active/frozen.
	Review(ctx context.Context, id uuid.UUID, approve bool) (*models.Tenant, error)
	SetFrozen(ctx context.Context, id uuid.UUID, frozen bool) (*models.Tenant, error)
}

// OnboardInput carries the data collected at merchant registration.
type OnboardInput struct {
	OwnerUserID uuid.UUID
	Name        string
	Phone       string
}

// UpdateInfoInput carries merchant-editable shop fields.
type UpdateInfoInput struct {
	Name     string
	Phone    *string
	Settings *models.TenantSettings
}

type service struct {
	repo Repository
	cfg  config.TenantConfig
	now  func() time.Time
}

// NewService wires a tenants service.
func NewService(repo Repository, cfg config.TenantConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	return &service{repo: repo, cfg: cfg, now: time.Now}, nil
}

func (s *service) Onboard(ctx context.Context, tx *gorm.DB, input OnboardInput) (*models.Tenant, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}

	trialDays := s.cfg.TrialDays
	if trialDays <= 0 {
		trialDays = 30
	}

	tenant := &models.Tenant{
		ID:          uuid.New(),
		Name:        input.Name,
		OwnerUserID: input.OwnerUserID,
		Status:      enums.TenantStatusPending,
		ExpiredAt:   s.now().AddDate(0, 0, trialDays),
	}
	if input.Phone != "" {
		tenant.Phone = &input.Phone
	}
	if err := s.repo.WithTx(tx).Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, err
	}
	return tenant, nil
}

func (s *service) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, err
	}
	return tenant, nil
}

func (s *service) UpdateInfo(ctx context.Context, id uuid.UUID, input UpdateInfoInput) (*models.Tenant, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}

	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Name = input.Name
	if input.Phone != nil {
		tenant.Phone = input.Phone
	}
	if input.Settings != nil {
		tenant.Settings = input.Settings
	}
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *service) Membership(ctx context.Context, id uuid.UUID) (*MembershipStatus, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	effective := tenant.EffectiveExpiredAt()
	daysLeft := int(effective.Sub(now).Hours() / 24)
	if daysLeft < 0 {
		daysLeft = 0
	}
	return &MembershipStatus{
		Status:             tenant.Status,
		EffectiveExpiredAt: effective,
		IsExpired:          tenant.IsExpired(now),
		DaysLeft:           daysLeft,
	}, nil
}

func (s *service) List(ctx context.Context, status *enums.TenantStatus, params pagination.Params) ([]models.Tenant, int64, error) {
	return s.repo.List(ctx, status, params)
}

func (s *service) Review(ctx context.Context, id uuid.UUID, approve bool) (*models.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Status != enums.TenantStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("tenant is %s, only pending tenants can be reviewed", tenant.Status))
	}

	status := enums.TenantStatusRejected
	if approve {
		status = enums.TenantStatusActive
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	tenant.Status = status
	return tenant, nil
}

func (s *service) SetFrozen(ctx context.Context, id uuid.UUID, frozen bool) (*models.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if frozen {
		if tenant.Status != enums.TenantStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active tenants can be frozen")
		}
		tenant.Status = enums.TenantStatusFrozen
	} else {
		if tenant.Status != enums.TenantStatusFrozen {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "tenant is not frozen")
		}
		tenant.Status = enums.TenantStatusActive
	}
	if err := s.repo.UpdateStatus(ctx, id, tenant.Status); err != nil {
		return nil, err
	}
	return tenant, nil
}
