package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// Order is a wholesale order placed by (or for) a customer.
//
// TotalAmountCents is computed once at creation from the item snapshots and
// never recomputed afterwards; it is the authoritative amount posted to the
// debt ledger when a credit order completes.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID         uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index:idx_orders_tenant_no,unique,composite:order_no"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderNo          string              `gorm:"column:order_no;not null;index:idx_orders_tenant_no,unique,composite:order_no"`
	OrderType        enums.OrderType     `gorm:"column:order_type;type:text;not null;default:'customer'"`
	TotalAmountCents int64               `gorm:"column:total_amount_cents;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status           enums.OrderStatus   `gorm:"column:status;not null;default:0"`
	Remark           string              `gorm:"column:remark;not null;default:''"`
	CompletedAt      *time.Time          `gorm:"column:completed_at"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
