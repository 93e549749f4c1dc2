package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xht-dev/wholesale-backend/pkg/enums"
)

// Audience values distinguish merchant tokens from back-office tokens.
const (
	AudienceMerchant = "merchant"
	AudienceOA       = "oa"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Role     enums.UserRole
	OARole   *enums.OARole
	Audience string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	TenantID *uuid.UUID     `json:"tenant_id,omitempty"`
	Role     enums.UserRole `json:"role"`
	OARole   *enums.OARole  `json:"oa_role,omitempty"`
	jwt.RegisteredClaims
}

// IsOA reports whether the token was minted for the back office.
func (c *AccessTokenClaims) IsOA() bool {
	for _, aud := range c.Audience {
		if aud == AudienceOA {
			return true
		}
	}
	return false
}
