package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a tenant-scoped buyer with a running debt balance.
//
// TotalDebtCents is a materialized cache of the debt log: it is mutated only
// by the ledger service and always equals the sum of the customer's DebtLog
// amounts. CreditLimitCents of 0 means no limit.
type Customer struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID         uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index:idx_customers_tenant_phone,unique,composite:phone"`
	Alias            string     `gorm:"column:alias;not null"`
	Phone            string     `gorm:"column:phone;not null;default:'';index:idx_customers_tenant_phone,unique,composite:phone"`
	Address          string     `gorm:"column:address;not null;default:''"`
	Remark           string     `gorm:"column:remark;not null;default:''"`
	TotalDebtCents   int64      `gorm:"column:total_debt_cents;not null;default:0"`
	CreditLimitCents int64      `gorm:"column:credit_limit_cents;not null;default:0"`
	LastTradeAt      *time.Time `gorm:"column:last_trade_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
