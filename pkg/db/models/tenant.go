package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// TenantSettings holds merchant-tunable shop behavior.
type TenantSettings struct {
	AllowCredit      bool  `json:"allow_credit"`
	MinDeliveryCents int64 `json:"min_delivery_cents"`
}

// Tenant is a merchant account. Every goods, customer and order row belongs
// to exactly one tenant.
type Tenant struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	OwnerUserID uuid.UUID          `gorm:"column:owner_user_id;type:uuid;not null"`
	Phone       *string            `gorm:"column:phone"`
	Status      enums.TenantStatus `gorm:"column:status;not null;default:0"`
	// ExpiredAt is the self-service subscription expiry; OAExpiredAt is set by
	// back-office renewals and takes precedence when present.
	ExpiredAt   time.Time       `gorm:"column:expired_at;not null"`
	OAExpiredAt *time.Time      `gorm:"column:oa_expired_at"`
	Settings    *TenantSettings `gorm:"column:settings;type:jsonb;serializer:json"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveExpiredAt returns the expiry that currently governs the tenant.
func (t *Tenant) EffectiveExpiredAt() time.Time {
	if t.OAExpiredAt != nil {
		return *t.OAExpiredAt
	}
	return t.ExpiredAt
}

// IsExpired reports whether the tenant's subscription has lapsed at now.
func (t *Tenant) IsExpired(now time.Time) bool {
	return t.EffectiveExpiredAt().Before(now)
}
