package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

// Repository persists renewal packages and renewal orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePackage(ctx context.Context, pkg *models.RenewalPackage) error
	FindPackage(ctx context.Context, id uuid.UUID) (*models.RenewalPackage, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]models.RenewalPackage, error)
	UpdatePackage(ctx context.Context, pkg *models.RenewalPackage) error
	SetPackageActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateOrder(ctx context.Context, order *models.RenewalOrder) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.RenewalOrder, error)
	FindOrderByNo(ctx context.Context, orderNo string) (*models.RenewalOrder, error)
	ListOrdersByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.RenewalOrder, int64, error)
	// MarkOrderPaid flips an unpaid order to paid. Returns false when the
	// order was already paid or does not exist.
	MarkOrderPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed subscriptions repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreatePackage(ctx context.Context, pkg *models.RenewalPackage) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *repository) FindPackage(ctx context.Context, id uuid.UUID) (*models.RenewalPackage, error) {
	var pkg models.RenewalPackage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repository) ListPackages(ctx context.Context, activeOnly bool) ([]models.RenewalPackage, error) {
	query := r.db.WithContext(ctx).Model(&models.RenewalPackage{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var pkgs []models.RenewalPackage
	if err := query.Order("duration_months ASC").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *repository) UpdatePackage(ctx context.Context, pkg *models.RenewalPackage) error {
	return r.db.WithContext(ctx).
		Model(&models.RenewalPackage{}).
		Where("id = ?", pkg.ID).
		Updates(map[string]any{
			"name":            pkg.Name,
			"duration_months": pkg.DurationMonths,
			"price_cents":     pkg.PriceCents,
		}).Error
}

func (r *repository) SetPackageActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.RenewalPackage{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.RenewalOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.RenewalOrder, error) {
	var order models.RenewalOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByNo(ctx context.Context, orderNo string) (*models.RenewalOrder, error) {
	var order models.RenewalOrder
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.RenewalOrder, int64, error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.RenewalOrder{}).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.RenewalOrder
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) MarkOrderPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RenewalOrder{}).
		Where("id = ? AND status = ?", id, enums.RenewalOrderStatusUnpaid).
		Updates(map[string]any{
			"status":  enums.RenewalOrderStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
