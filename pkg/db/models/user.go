package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// User is an authenticated mini-program principal. A merchant user is bound
// to the tenant they own; customer users are bound to the shop they browse.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Mobile       string         `gorm:"column:mobile;uniqueIndex;not null"`
	Nickname     string         `gorm:"column:nickname;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'merchant'"`
	TenantID     *uuid.UUID     `gorm:"column:tenant_id;type:uuid;index"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
