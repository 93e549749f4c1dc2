package tenants

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

// Repository manages persistence for merchant accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, status *enums.TenantStatus, params pagination.Params) ([]models.Tenant, int64, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TenantStatus) error
	// SetOAExpiry stamps the back-office controlled expiry, which overrides
	// the self-service one while present.
	SetOAExpiry(ctx context.Context, id uuid.UUID, at time.Time) error
	SetExpiry(ctx context.Context, id uuid.UUID, at time.Time) error
	// ListLapsed returns active tenants whose effective expiry passed the cutoff.
	ListLapsed(ctx context.Context, cutoff time.Time, limit int) ([]models.Tenant, error)
	// MarkLapsed flips an active tenant to expired, re-checking the expiry so a
	// concurrent renewal wins the race.
	MarkLapsed(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tenants repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "owner_user_id = ?", ownerUserID).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) List(ctx context.Context, status *enums.TenantStatus, params pagination.Params) ([]models.Tenant, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Tenant{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []models.Tenant
	if err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&tenants).Error; err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

func (r *repository) Update(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", tenant.ID).
		Updates(map[string]any{
			"name":     tenant.Name,
			"phone":    tenant.Phone,
			"settings": tenant.Settings,
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TenantStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetOAExpiry(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("oa_expired_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const lapsedCondition = "status = ? AND ((oa_expired_at IS NOT NULL AND oa_expired_at < ?) OR (oa_expired_at IS NULL AND expired_at < ?))"

func (r *repository) ListLapsed(ctx context.Context, cutoff time.Time, limit int) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).
		Where(lapsedCondition, enums.TenantStatusActive, cutoff, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repository) MarkLapsed(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Where(lapsedCondition, enums.TenantStatusActive, cutoff, cutoff).
		Update("status", enums.TenantStatusExpired)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetExpiry(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("expired_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
