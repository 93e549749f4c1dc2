package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

// Repository manages persistence for debt log entries and the customer
// balance they roll up into.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateLog(ctx context.Context, entry *models.DebtLog) error
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, params pagination.Params) ([]models.DebtLog, int64, error)
	SumByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	AdjustCustomerDebt(ctx context.Context, tenantID, customerID uuid.UUID, deltaCents int64) (bool, error)
	AdjustCustomerDebtWithinLimit(ctx context.Context, tenantID, customerID uuid.UUID, deltaCents int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateLog(ctx context.Context, entry *models.DebtLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, params pagination.Params) ([]models.DebtLog, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.DebtLog{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.DebtLog
	if err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) SumByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.DebtLog{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *repository) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// AdjustCustomerDebt moves the cached balance and touches last_trade_at in a
// single statement. Returns false when the customer row does not exist.
func (r *repository) AdjustCustomerDebt(ctx context.Context, tenantID, customerID uuid.UUID, deltaCents int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Updates(debtUpdateColumns(deltaCents))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdjustCustomerDebtWithinLimit is the guarded variant: the update only
// applies while the resulting balance stays within the customer's credit
// limit (limit 0 means uncapped). Returns false when the guard rejected it.
func (r *repository) AdjustCustomerDebtWithinLimit(ctx context.Context, tenantID, customerID uuid.UUID, deltaCents int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Where("credit_limit_cents = 0 OR total_debt_cents + ? <= credit_limit_cents", deltaCents).
		Updates(debtUpdateColumns(deltaCents))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func debtUpdateColumns(deltaCents int64) map[string]any {
	return map[string]any{
		"total_debt_cents": gorm.Expr("total_debt_cents + ?", deltaCents),
		"last_trade_at":    gorm.Expr("CURRENT_TIMESTAMP"),
	}
}
