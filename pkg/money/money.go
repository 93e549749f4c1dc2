// Package money converts between integer minor-unit amounts (cents) and
// decimal display strings. All arithmetic stays in integers; floats never
// touch an amount.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// CentsToDisplay renders a cent amount as a decimal string with exactly two
// fraction digits. Zero renders as "0.00".
func CentsToDisplay(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// DisplayToCents parses a display amount ("10.50") into cents. Amounts with
// more than two fraction digits are rounded half away from zero on the
// scaled value: "1.015" becomes 102, not the 101 a binary float would give.
// Empty input is rejected; coercion of absent optional fields happens at the
// request boundary, not here.
func DisplayToCents(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount is required")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be numeric").
			WithDetails(map[string]any{"value": value})
	}
	scaled := dec.Mul(hundred).Round(0)
	if !scaled.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount out of range")
	}
	return scaled.IntPart(), nil
}

// LineTotal multiplies a unit price in cents by a quantity. Both operands
// are integers so no rounding is involved.
func LineTotal(unitPriceCents int64, qty int64) int64 {
	return unitPriceCents * qty
}

// ItemSubtotal computes the subtotal for a mixed-unit order line. Big-unit
// price and count are zero for single-unit goods.
func ItemSubtotal(priceBigCents int64, countBig int, priceSmallCents int64, countSmall int) int64 {
	return LineTotal(priceBigCents, int64(countBig)) + LineTotal(priceSmallCents, int64(countSmall))
}
