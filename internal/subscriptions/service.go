// Package subscriptions handles renewal packages, renewal orders, and the
// expiry bookkeeping that keeps a tenant's shop open.
package subscriptions

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages subscription packages and renewals.
type Service interface {
	CreatePackage(ctx context.Context, input PackageInput) (*models.RenewalPackage, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, input PackageInput) (*models.RenewalPackage, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]models.RenewalPackage, error)
	TogglePackage(ctx context.Context, id uuid.UUID, active bool) error

	// CreateRenewalOrder opens an unpaid online renewal for an active package.
	CreateRenewalOrder(ctx context.Context, tenantID, packageID uuid.UUID) (*models.RenewalOrder, error)
	// HandlePaymentCallback marks the order paid and extends the tenant's
	// expiry in one transaction. Duplicate callbacks are no-ops.
	HandlePaymentCallback(ctx context.Context, orderNo string) (*models.RenewalOrder, error)
	// GiftRenewal is the back-office path: a pre-paid gift order whose months
	// land on the tenant's back-office expiry.
	GiftRenewal(ctx context.Context, tenantID uuid.UUID, months int, remark string) (*models.RenewalOrder, error)

	ListOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.RenewalOrder, int64, error)
}

// PackageInput carries back-office package fields.
type PackageInput struct {
	Name           string
	DurationMonths int
	PriceCents     int64
}

type service struct {
	tx      txRunner
	repo    Repository
	tenants tenants.Repository
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the subscriptions service.
func NewService(tx txRunner, repo Repository, tenantsRepo tenants.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if tenantsRepo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, tenants: tenantsRepo, logg: logg, now: time.Now}, nil
}

// AddMonths advances t by whole calendar months, clamping to the last day of
// the target month so Jan 31 plus one month lands on Feb 28 (or 29), not Mar 3.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	target := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func (s *service) CreatePackage(ctx context.Context, input PackageInput) (*models.RenewalPackage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	pkg := &models.RenewalPackage{
		ID:             uuid.New(),
		Name:           input.Name,
		DurationMonths: input.DurationMonths,
		PriceCents:     input.PriceCents,
		IsActive:       true,
	}
	if err := s.repo.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *service) UpdatePackage(ctx context.Context, id uuid.UUID, input PackageInput) (*models.RenewalPackage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	pkg, err := s.repo.FindPackage(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal package not found")
		}
		return nil, err
	}
	pkg.Name = input.Name
	pkg.DurationMonths = input.DurationMonths
	pkg.PriceCents = input.PriceCents
	if err := s.repo.UpdatePackage(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *service) ListPackages(ctx context.Context, activeOnly bool) ([]models.RenewalPackage, error) {
	return s.repo.ListPackages(ctx, activeOnly)
}

func (s *service) TogglePackage(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.repo.SetPackageActive(ctx, id, active)
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "renewal package not found")
	}
	return err
}

func (s *service) CreateRenewalOrder(ctx context.Context, tenantID, packageID uuid.UUID) (*models.RenewalOrder, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, err
	}

	pkg, err := s.repo.FindPackage(ctx, packageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal package not found")
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renewal package is off the shelf")
	}

	order := &models.RenewalOrder{
		ID:             uuid.New(),
		TenantID:       tenantID,
		PackageID:      &pkg.ID,
		OrderNo:        newRenewalNo("R", s.now()),
		DurationMonths: pkg.DurationMonths,
		AmountCents:    pkg.PriceCents,
		Status:         enums.RenewalOrderStatusUnpaid,
		Source:         enums.RenewalSourceOnline,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) HandlePaymentCallback(ctx context.Context, orderNo string) (*models.RenewalOrder, error) {
	order, err := s.repo.FindOrderByNo(ctx, orderNo)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal order not found")
		}
		return nil, err
	}
	if order.Status == enums.RenewalOrderStatusPaid {
		return order, nil
	}

	now := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		paid, err := s.repo.WithTx(tx).MarkOrderPaid(ctx, order.ID, now)
		if err != nil {
			return err
		}
		if !paid {
			// Lost the race to a concurrent callback; nothing left to do.
			return nil
		}

		tenant, err := s.tenants.WithTx(tx).FindByID(ctx, order.TenantID)
		if err != nil {
			return err
		}

		base := tenant.EffectiveExpiredAt()
		if base.Before(now) {
			base = now
		}
		if err := s.tenants.WithTx(tx).SetExpiry(ctx, tenant.ID, AddMonths(base, order.DurationMonths)); err != nil {
			return err
		}
		if tenant.Status == enums.TenantStatusExpired || tenant.Status == enums.TenantStatusActive {
			return s.tenants.WithTx(tx).UpdateStatus(ctx, tenant.ID, enums.TenantStatusActive)
		}
		return nil
	})
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_no", orderNo), "renewal payment rolled back", err)
		return nil, err
	}
	return s.repo.FindOrder(ctx, order.ID)
}

func (s *service) GiftRenewal(ctx context.Context, tenantID uuid.UUID, months int, remark string) (*models.RenewalOrder, error) {
	if months <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift months must be positive")
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, err
	}

	now := s.now()
	order := &models.RenewalOrder{
		ID:             uuid.New(),
		TenantID:       tenantID,
		OrderNo:        newRenewalNo("G", now),
		DurationMonths: months,
		AmountCents:    0,
		Status:         enums.RenewalOrderStatusPaid,
		Source:         enums.RenewalSourceOAAdmin,
		IsGift:         true,
		Remark:         remark,
		PaidAt:         &now,
	}

	base := tenant.EffectiveExpiredAt()
	if base.Before(now) {
		base = now
	}
	newExpiry := AddMonths(base, months)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := s.tenants.WithTx(tx).SetOAExpiry(ctx, tenantID, newExpiry); err != nil {
			return err
		}
		if tenant.Status == enums.TenantStatusExpired {
			return s.tenants.WithTx(tx).UpdateStatus(ctx, tenantID, enums.TenantStatusActive)
		}
		return nil
	})
	if err != nil {
		s.logg.Error(s.logg.WithTenantID(ctx, tenantID.String()), "gift renewal rolled back", err)
		return nil, err
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.RenewalOrder, int64, error) {
	return s.repo.ListOrdersByTenant(ctx, tenantID, params)
}

func (in PackageInput) validate() error {
	if in.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "package name required")
	}
	if in.DurationMonths <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be at least one month")
	}
	if in.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

const renewalNoCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newRenewalNo(prefix string, now time.Time) string {
	buff := make([]byte, 6)
	if _, err := rand.Read(buff); err != nil {
		return prefix + fmt.Sprintf("%d%06d", now.UnixMilli(), time.Now().UnixNano()%1000000)
	}
	out := make([]byte, len(buff))
	for i, b := range buff {
		out[i] = renewalNoCharset[int(b)%len(renewalNoCharset)]
	}
	return prefix + fmt.Sprintf("%d", now.UnixMilli()) + string(out)
}
