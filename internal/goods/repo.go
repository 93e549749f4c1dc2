package goods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

// ListFilter narrows the tenant's goods listing.
type ListFilter struct {
	CategoryID *uuid.UUID
	Keyword    string
	OnSaleOnly bool
}

// Repository manages persistence for goods and categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Goods) error
	Update(ctx context.Context, item *models.Goods) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Goods, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Goods, int64, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AdjustStock applies a delta in smallest units; a negative delta only
	// applies while enough stock remains. Returns false when the guard (or a
	// missing row) rejected the update.
	AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (bool, error)
	SetOnSale(ctx context.Context, tenantID, id uuid.UUID, onSale bool) (bool, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error)
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a goods repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Goods) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.Goods) error {
	return r.db.WithContext(ctx).
		Model(&models.Goods{}).
		Where("tenant_id = ? AND id = ?", item.TenantID, item.ID).
		Updates(map[string]any{
			"category_id":            item.CategoryID,
			"name":                   item.Name,
			"img_url":                item.ImgURL,
			"is_multi_unit":          item.IsMultiUnit,
			"unit_small_name":        item.UnitSmallName,
			"unit_small_price_cents": item.UnitSmallPriceCents,
			"unit_big_name":          item.UnitBigName,
			"unit_big_price_cents":   item.UnitBigPriceCents,
			"rate":                   item.Rate,
			"is_on_sale":             item.IsOnSale,
		}).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Goods, error) {
	var item models.Goods
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Goods, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Goods{}).
		Where("tenant_id = ?", tenantID)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.OnSaleOnly {
		query = query.Where("is_on_sale = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Goods
	if err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Goods{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Goods{}).
		Where("tenant_id = ? AND id = ?", tenantID, id)
	if delta < 0 {
		query = query.Where("stock + ? >= 0", delta)
	}
	result := query.Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetOnSale(ctx context.Context, tenantID, id uuid.UUID, onSale bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Goods{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_on_sale", onSale)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, created_at ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
