package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// OAUser is a back-office operator account.
type OAUser struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string       `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string       `gorm:"column:password_hash;not null"`
	Nickname     string       `gorm:"column:nickname;not null;default:''"`
	Role         enums.OARole `gorm:"column:role;type:text;not null;default:'staff'"`
	// Status 0 = enabled, 1 = disabled.
	Status      int        `gorm:"column:status;not null;default:0"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
