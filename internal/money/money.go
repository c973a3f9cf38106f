// Package money computes per-line prices, per-line tax and cart totals.
//
// All functions are pure: totals are recomputed from cart contents on every
// call and nothing is cached. Arithmetic uses fixed-point decimals so the
// tax truncation contract is exact and platform-independent.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// LinePrice returns the unit price for a line: the override when set, else
// the catalog price, else zero (price-prompt items without an override).
func LinePrice(line models.CartLine) decimal.Decimal {
	if line.PriceOverride.Valid {
		return line.PriceOverride.Decimal
	}
	if line.Item.Price.Valid {
		return line.Item.Price.Decimal
	}
	return decimal.Zero
}

// LineTotal returns the extended price of a top-level line: unit price times
// quantity, plus each modifier priced independently at its own quantity.
func LineTotal(line models.CartLine) decimal.Decimal {
	total := LinePrice(line).Mul(decimal.NewFromInt(int64(line.Quantity)))
	for _, mod := range line.Modifiers {
		total = total.Add(LinePrice(mod).Mul(decimal.NewFromInt(int64(mod.Quantity))))
	}
	return total
}

// LineTax returns the tax owed on a top-level line. Non-taxable items and
// lines without a positive rate snapshot owe nothing. The amount is
// truncated to cents, never rounded, matching the legacy fixed-point
// accounting system. Modifiers are never taxed separately: the line total
// being taxed already includes them.
func LineTax(line models.CartLine) decimal.Decimal {
	if !line.Item.Taxable() {
		return decimal.Zero
	}
	if !line.TaxRate.Valid || !line.TaxRate.Decimal.IsPositive() {
		return decimal.Zero
	}
	return LineTotal(line).Mul(line.TaxRate.Decimal).Div(oneHundred).Truncate(2)
}

// Subtotal sums LineTotal over top-level lines.
func Subtotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// TaxTotal sums LineTax over top-level lines.
func TaxTotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTax(l))
	}
	return sum
}

// GrandTotal is subtotal plus tax, the amount charged.
func GrandTotal(lines []models.CartLine) decimal.Decimal {
	return Subtotal(lines).Add(TaxTotal(lines))
}

// ItemCount sums quantities across top-level lines, for the cart badge.
func ItemCount(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Format renders an amount for display with two decimal places, e.g. "$8.00".
func Format(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
