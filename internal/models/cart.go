package models

import "github.com/shopspring/decimal"

// CartLine is a single line in the active order. The Item field is a value
// snapshot taken at add time: a catalog refresh mid-order must not change a
// price the customer already agreed to.
//
// Modifier lines live by value inside the parent's Modifiers slice. They
// record the parent's line ID at creation but carry no live back-reference,
// and they never nest further.
type CartLine struct {
	// ID is unique within a session (monotonic, collision-resistant).
	ID string

	Item     MenuItem
	Quantity int

	// PriceOverride replaces the catalog price when set, used for
	// price-prompt items.
	PriceOverride decimal.NullDecimal

	// TaxRate is the effective rate snapshot resolved at add time.
	TaxRate decimal.NullDecimal

	IsModifier   bool
	ParentLineID string

	Modifiers []CartLine
}

// Bare reports whether the line is a plain top-level item with no modifiers.
// Only bare lines participate in merge-on-add.
func (l CartLine) Bare() bool {
	return !l.IsModifier && len(l.Modifiers) == 0
}

// Clone returns a deep copy of the line. Reducer transitions copy lines
// before mutating so prior states stay valid.
func (l CartLine) Clone() CartLine {
	out := l
	if l.Modifiers != nil {
		out.Modifiers = make([]CartLine, len(l.Modifiers))
		copy(out.Modifiers, l.Modifiers)
	}
	return out
}
