package models

import (
	"time"

	"github.com/google/uuid"
)

// Goods is a sellable item. Stock is always tracked in the smallest unit;
// Rate relates one big unit (e.g. case) to Rate small units (e.g. bottles).
// Rate <= 1 means the item is single-unit and only the small-unit price and
// quantity apply.
type Goods struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID            uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	CategoryID          *uuid.UUID `gorm:"column:category_id;type:uuid"`
	Name                string     `gorm:"column:name;not null"`
	ImgURL              string     `gorm:"column:img_url;not null;default:''"`
	IsMultiUnit         bool       `gorm:"column:is_multi_unit;not null;default:false"`
	UnitSmallName       string     `gorm:"column:unit_small_name;not null"`
	UnitSmallPriceCents int64      `gorm:"column:unit_small_price_cents;not null"`
	UnitBigName         string     `gorm:"column:unit_big_name;not null;default:''"`
	UnitBigPriceCents   int64      `gorm:"column:unit_big_price_cents;not null;default:0"`
	Rate                int        `gorm:"column:rate;not null;default:1"`
	Stock               int        `gorm:"column:stock;not null;default:0"`
	IsOnSale            bool       `gorm:"column:is_on_sale;not null;default:true"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
