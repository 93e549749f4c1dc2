package enums

import "fmt"

// RenewalOrderStatus tracks payment state for subscription renewals.
type RenewalOrderStatus int

const (
	RenewalOrderStatusUnpaid RenewalOrderStatus = 0
	RenewalOrderStatusPaid   RenewalOrderStatus = 1
)

// IsValid reports whether the value is a known RenewalOrderStatus.
func (s RenewalOrderStatus) IsValid() bool {
	return s == RenewalOrderStatusUnpaid || s == RenewalOrderStatusPaid
}

// RenewalSource names which channel created a renewal order.
type RenewalSource string

const (
	RenewalSourceOnline  RenewalSource = "online"
	RenewalSourceOAAdmin RenewalSource = "oa_admin"
)

// IsValid reports whether the value is a known RenewalSource.
func (s RenewalSource) IsValid() bool {
	return s == RenewalSourceOnline || s == RenewalSourceOAAdmin
}

// ParseRenewalSource converts raw input into a RenewalSource.
func ParseRenewalSource(value string) (RenewalSource, error) {
	switch RenewalSource(value) {
	case RenewalSourceOnline:
		return RenewalSourceOnline, nil
	case RenewalSourceOAAdmin:
		return RenewalSourceOAAdmin, nil
	default:
		return "", fmt.Errorf("invalid renewal source %q", value)
	}
}
