package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the priced snapshot of one goods line within an order.
// Prices are copied from the goods record at creation so later price edits
// never change a historical order. For single-unit goods the big-unit fields
// are zero.
type OrderItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	GoodsID         uuid.UUID `gorm:"column:goods_id;type:uuid;not null"`
	Name            string    `gorm:"column:name;not null"`
	IsMultiUnit     bool      `gorm:"column:is_multi_unit;not null;default:false"`
	CountBig        int       `gorm:"column:count_big;not null;default:0"`
	CountSmall      int       `gorm:"column:count_small;not null;default:0"`
	UnitBigName     string    `gorm:"column:unit_big_name;not null;default:''"`
	UnitSmallName   string    `gorm:"column:unit_small_name;not null"`
	Rate            int       `gorm:"column:rate;not null;default:1"`
	PriceBigCents   int64     `gorm:"column:price_big_cents;not null;default:0"`
	PriceSmallCents int64     `gorm:"column:price_small_cents;not null"`
	SubtotalCents   int64     `gorm:"column:subtotal_cents;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
