package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// RenewalPackage is a back-office-managed subscription product merchants buy
// to extend their shop's validity.
type RenewalPackage struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	DurationMonths int       `gorm:"column:duration_months;not null"`
	PriceCents     int64     `gorm:"column:price_cents;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RenewalOrder records one subscription renewal, whether paid online or
// gifted by a back-office operator.
type RenewalOrder struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null;index"`
	PackageID      *uuid.UUID               `gorm:"column:package_id;type:uuid"`
	OrderNo        string                   `gorm:"column:order_no;uniqueIndex;not null"`
	DurationMonths int                      `gorm:"column:duration_months;not null"`
	AmountCents    int64                    `gorm:"column:amount_cents;not null"`
	Status         enums.RenewalOrderStatus `gorm:"column:status;not null;default:0"`
	Source         enums.RenewalSource      `gorm:"column:source;type:text;not null"`
	IsGift         bool                     `gorm:"column:is_gift;not null;default:false"`
	Remark         string                   `gorm:"column:remark;not null;default:''"`
	PaidAt         *time.Time               `gorm:"column:paid_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
