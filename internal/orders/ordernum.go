package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNoCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderNo builds an order number like "ORD1756400000000X7K2QD". The random
// suffix makes same-millisecond collisions unlikely; the unique index on
// (tenant_id, order_no) backstops the rest.
func NewOrderNo(now time.Time) string {
	return "ORD" + fmt.Sprintf("%d", now.UnixMilli()) + randomSuffix(6)
}

func randomSuffix(length int) string {
	buff := make([]byte, length)
	if _, err := rand.Read(buff); err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	out := make([]byte, length)
	for i, b := range buff {
		out[i] = orderNoCharset[int(b)%len(orderNoCharset)]
	}
	return string(out)
}
