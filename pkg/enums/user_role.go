package enums

import "fmt"

// UserRole names the mini-program user roles.
type UserRole string

const (
	UserRoleMerchant UserRole = "merchant"
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	return r == UserRoleMerchant || r == UserRoleCustomer || r == UserRoleAdmin
}

// OARole names back-office operator roles.
type OARole string

const (
	OARoleSuperAdmin OARole = "super_admin"
	OARoleAdmin      OARole = "admin"
	OARoleStaff      OARole = "staff"
)

// IsValid reports whether the value is a known OARole.
func (r OARole) IsValid() bool {
	return r == OARoleSuperAdmin || r == OARoleAdmin || r == OARoleStaff
}

// ParseOARole converts raw input into an OARole.
func ParseOARole(value string) (OARole, error) {
	switch OARole(value) {
	case OARoleSuperAdmin:
		return OARoleSuperAdmin, nil
	case OARoleAdmin:
		return OARoleAdmin, nil
	case OARoleStaff:
		return OARoleStaff, nil
	default:
		return "", fmt.Errorf("invalid oa role %q", value)
	}
}
