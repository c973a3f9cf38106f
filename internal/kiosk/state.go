// Package kiosk holds the order/customer session state and its reducer.
//
// State mutations happen synchronously through Reduce, a pure transition
// function callable from UI event handlers and unit-testable without any UI
// harness. Totals are never stored on the state; they are recomputed from
// the cart by the money package on every read.
package kiosk

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/models"
)

// State is the complete mutable session state for one customer order.
type State struct {
	// Cart is the ordered sequence of top-level lines. Insertion order
	// matters for display only.
	Cart []models.CartLine

	// SelectedDepartmentID restricts which catalog items are shown; empty
	// means all. It never affects cart contents.
	SelectedDepartmentID string

	CustomerType models.CustomerType
	Loyalty      *models.LoyaltyProfile
	CustomerName string

	Mode   models.KioskMode
	Online bool
}

// NewState returns the idle state for a fresh session.
func NewState(mode models.KioskMode) State {
	return State{Mode: mode}
}

var lineSeq atomic.Uint64

// nextLineID generates a session-unique line identifier: millisecond
// timestamp plus a wrapping counter, so ids stay monotonic and collision
// free even for adds within the same millisecond.
func nextLineID() string {
	n := lineSeq.Add(1) % 10000
	return fmt.Sprintf("%d%04d", time.Now().UnixMilli(), n)
}

// NewLine builds a top-level cart line from a catalog item snapshot and the
// effective tax rate resolved for it.
func NewLine(item models.MenuItem, taxRate decimal.NullDecimal) models.CartLine {
	return models.CartLine{
		ID:       nextLineID(),
		Item:     item,
		Quantity: 1,
		TaxRate:  taxRate,
	}
}

// NewModifierLine builds a modifier line owned by the parent line. Modifier
// quantity defaults to 1 and modifiers never nest further.
func NewModifierLine(item models.MenuItem, parentLineID string) models.CartLine {
	return models.CartLine{
		ID:           nextLineID(),
		Item:         item,
		Quantity:     1,
		IsModifier:   true,
		ParentLineID: parentLineID,
	}
}
