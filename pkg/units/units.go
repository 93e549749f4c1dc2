// Package units converts between mixed big/small unit quantities and
// canonical smallest-unit totals, and formats totals for display.
package units

import "fmt"

// EffectiveRate normalizes a goods conversion rate: anything at or below 1
// means the goods is single-unit.
func EffectiveRate(rate int) int {
	if rate > 1 {
		return rate
	}
	return 1
}

// ToSmallest converts a big/small quantity pair into a smallest-unit total.
// Negative quantities propagate arithmetically; stock decrements rely on
// that.
func ToSmallest(big, small, rate int) int {
	return big*EffectiveRate(rate) + small
}

// Split breaks a smallest-unit total into big and small components.
func Split(total, rate int) (big, small int) {
	r := EffectiveRate(rate)
	if r == 1 {
		return 0, total
	}
	return total / r, total % r
}

// FormatStock renders a smallest-unit total as "2箱5瓶" style text. A zero
// total always renders in the small unit ("0瓶"), never as an empty string.
func FormatStock(total, rate int, bigName, smallName string) string {
	if EffectiveRate(rate) == 1 {
		return fmt.Sprintf("%d%s", total, smallName)
	}

	big, small := Split(total, rate)

	out := ""
	if big > 0 {
		out += fmt.Sprintf("%d%s", big, bigName)
	}
	if small > 0 || big == 0 {
		out += fmt.Sprintf("%d%s", small, smallName)
	}
	return out
}
