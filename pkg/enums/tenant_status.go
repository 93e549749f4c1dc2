package enums

import "fmt"

// TenantStatus tracks a merchant account's review and subscription state.
type TenantStatus int

const (
	TenantStatusPending  TenantStatus = 0
	TenantStatusActive   TenantStatus = 1
	TenantStatusFrozen   TenantStatus = 2
	TenantStatusExpired  TenantStatus = 3
	TenantStatusRejected TenantStatus = 4
)

var tenantStatusNames = map[TenantStatus]string{
	TenantStatusPending:  "pending",
	TenantStatusActive:   "active",
	TenantStatusFrozen:   "frozen",
	TenantStatusExpired:  "expired",
	TenantStatusRejected: "rejected",
}

// String implements fmt.Stringer.
func (s TenantStatus) String() string {
	if name, ok := tenantStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("tenant_status(%d)", int(s))
}

// IsValid reports whether the value is a known TenantStatus.
func (s TenantStatus) IsValid() bool {
	_, ok := tenantStatusNames[s]
	return ok
}
