package enums

import "fmt"

// OrderType distinguishes customer-placed orders from orders the merchant
// enters on a customer's behalf.
type OrderType string

const (
	OrderTypeCustomer OrderType = "customer"
	OrderTypeAgent    OrderType = "agent"
)

// String implements fmt.Stringer.
func (o OrderType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	return o == OrderTypeCustomer || o == OrderTypeAgent
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	switch OrderType(value) {
	case OrderTypeCustomer:
		return OrderTypeCustomer, nil
	case OrderTypeAgent:
		return OrderTypeAgent, nil
	default:
		return "", fmt.Errorf("invalid order type %q", value)
	}
}
