package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// DebtLog is one immutable entry in a customer's debt ledger. Positive
// amounts increase what the customer owes, negative amounts are repayments.
// Rows are append-only; no update or delete path exists.
type DebtLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	CustomerID uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	AmountCents int64            `gorm:"column:amount_cents;not null"`
	Type       enums.DebtLogType `gorm:"column:type;type:text;not null"`
	// Source is the order id for order-type entries, or "manual" for
	// repayments entered by the merchant.
	Source    string    `gorm:"column:source;not null"`
	Remark    string    `gorm:"column:remark;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
