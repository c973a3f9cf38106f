package kiosk

import "github.com/poslite/kiosk/internal/models"

// Action is a discrete state transition request dispatched from a UI event
// handler.
type Action interface {
	isAction()
}

// AddToCart appends a line, or merges into an existing bare line of the same
// catalog item when the incoming line is also bare.
type AddToCart struct {
	Line models.CartLine
}

// RemoveLine removes a top-level line by id. Modifiers are owned inline, so
// no cascading removal is needed.
type RemoveLine struct {
	LineID string
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line entirely.
type UpdateQuantity struct {
	LineID   string
	Quantity int
}

// AddModifier attaches a modifier line to an existing top-level line.
type AddModifier struct {
	ParentLineID string
	Modifier     models.CartLine
}

// RemoveModifier detaches a modifier line from its parent.
type RemoveModifier struct {
	ParentLineID string
	ModifierID   string
}

// ClearCart empties the cart, leaving customer identity intact.
type ClearCart struct{}

// SetDepartment selects the department filter; empty clears it.
type SetDepartment struct {
	DepartmentID string
}

// SetCustomerType records the guest/member choice.
type SetCustomerType struct {
	Type models.CustomerType
}

// SetLoyalty attaches a loyalty profile after a successful lookup. The
// profile's name pre-fills the customer name when none was entered yet; the
// customer may still override it.
type SetLoyalty struct {
	Profile *models.LoyaltyProfile
}

// SetCustomerName records the name entered on the name step.
type SetCustomerName struct {
	Name string
}

// SetKioskMode changes the device operating mode for future sessions.
type SetKioskMode struct {
	Mode models.KioskMode
}

// SetOnline records the connectivity flag from the monitor.
type SetOnline struct {
	Online bool
}

// ResetOrder clears the cart, customer identity and department filter,
// returning to the idle screen state.
type ResetOrder struct{}

func (AddToCart) isAction()       {}
func (RemoveLine) isAction()      {}
func (UpdateQuantity) isAction()  {}
func (AddModifier) isAction()     {}
func (RemoveModifier) isAction()  {}
func (ClearCart) isAction()       {}
func (SetDepartment) isAction()   {}
func (SetCustomerType) isAction() {}
func (SetLoyalty) isAction()      {}
func (SetCustomerName) isAction() {}
func (SetKioskMode) isAction()    {}
func (SetOnline) isAction()       {}
func (ResetOrder) isAction()      {}
