package enums

import "fmt"

// OrderStatus tracks the wholesale order lifecycle. The integer codes are
// part of the stored data model, not just presentation.
type OrderStatus int

const (
	OrderStatusCancelled OrderStatus = -1
	OrderStatusPending   OrderStatus = 0
	OrderStatusConfirmed OrderStatus = 1
	OrderStatusCompleted OrderStatus = 2
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusCancelled: "cancelled",
	OrderStatusPending:   "pending",
	OrderStatusConfirmed: "confirmed",
	OrderStatusCompleted: "completed",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("order_status(%d)", int(s))
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusCompleted
}

// Completable reports whether an order in this status may be completed.
func (s OrderStatus) Completable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// ParseOrderStatus converts a raw code into an OrderStatus.
func ParseOrderStatus(code int) (OrderStatus, error) {
	s := OrderStatus(code)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid order status %d", code)
	}
	return s, nil
}
