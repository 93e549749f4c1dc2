package enums

import "fmt"

// DebtLogType classifies an entry in the customer debt ledger.
type DebtLogType string

const (
	// DebtLogTypeOrder records debt taken on when a credit order completes.
	DebtLogTypeOrder DebtLogType = "order"
	// DebtLogTypeRepayment records a manual repayment against the balance.
	DebtLogTypeRepayment DebtLogType = "repayment"
)

// DebtLogSourceManual is the source marker for entries not tied to an order.
const DebtLogSourceManual = "manual"

// String implements fmt.Stringer.
func (t DebtLogType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DebtLogType.
func (t DebtLogType) IsValid() bool {
	return t == DebtLogTypeOrder || t == DebtLogTypeRepayment
}

// ParseDebtLogType converts raw input into a DebtLogType.
func ParseDebtLogType(value string) (DebtLogType, error) {
	switch DebtLogType(value) {
	case DebtLogTypeOrder:
		return DebtLogTypeOrder, nil
	case DebtLogTypeRepayment:
		return DebtLogTypeRepayment, nil
	default:
		return "", fmt.Errorf("invalid debt log type %q", value)
	}
}
