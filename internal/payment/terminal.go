// Package payment orchestrates the multi-step payment flow: card payments
// through the terminal bridge and gift cards through the gift-card host.
//
// Capability results are converted to typed values at this boundary; nothing
// downstream re-parses loosely-typed terminal payloads, and no capability
// error escapes the state machine.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// EntryMode is a bitmask of terminal input methods allowed for one attempt.
type EntryMode uint8

const (
	EntryManual EntryMode = 1 << iota
	EntrySwipe
	EntryChip
	EntryContactless
	EntryScan
)

// Has reports whether the mask allows the given mode.
func (m EntryMode) Has(mode EntryMode) bool {
	return m&mode != 0
}

// Method is the customer-facing card sub-method choice. Each maps to a
// distinct entry-mode preset.
type Method string

const (
	MethodQR    Method = "qr"
	MethodNFC   Method = "nfc"
	MethodSwipe Method = "swipe"
	MethodAll   Method = "all"
)

// EntryModes returns the preset bitmask for the method. Unknown methods get
// the all-modes preset.
func (m Method) EntryModes() EntryMode {
	switch m {
	case MethodQR:
		return EntryScan
	case MethodNFC:
		return EntryContactless
	case MethodSwipe:
		return EntrySwipe | EntryChip
	default:
		return EntryManual | EntrySwipe | EntryChip | EntryContactless | EntryScan
	}
}

// ChargeRequest is one charge attempt sent to the terminal bridge.
type ChargeRequest struct {
	TransType  string
	Amount     decimal.Decimal
	EntryModes EntryMode

	// Reference is a per-attempt ECR reference, unique per attempt.
	Reference string
}

// ChargeResult is the typed terminal outcome, built once at the boundary.
type ChargeResult struct {
	Approved bool
	Code     string
	Message  string

	MaskedAccount  string
	CardType       string
	EntryMethod    string
	AuthCode       string
	HostRefNum     string
	ApprovedAmount decimal.Decimal
}

// Terminal is the external payment-terminal capability.
type Terminal interface {
	// Charge submits one charge attempt and blocks until the terminal
	// responds or ctx is done.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// Cancel aborts the in-flight terminal operation. Cancellation is
	// advisory to the terminal; local state moves on regardless.
	Cancel(ctx context.Context) error

	// CloseBatch settles the day's batch.
	CloseBatch(ctx context.Context) error
}

// GiftCardBalance is the typed balance-check outcome.
type GiftCardBalance struct {
	OK      bool
	Code    string
	Balance decimal.Decimal
}

// GiftCardRedeem is the typed redemption outcome.
type GiftCardRedeem struct {
	OK          bool
	Code        string
	HostRef     string
	NewBalance  decimal.Decimal
	Description string
}

// GiftCards is the external stored-value host capability. Tokens are passed
// in the clear here; the client implementation owns encryption.
type GiftCards interface {
	CheckBalance(ctx context.Context, token string) (*GiftCardBalance, error)
	Redeem(ctx context.Context, token string, amount decimal.Decimal) (*GiftCardRedeem, error)
}

// Result carries the fields order submission records for an approved
// payment, whichever path produced it.
type Result struct {
	// Kind is "card" or "gift_card".
	Kind string

	Amount decimal.Decimal

	CardNumber      string
	CardType        string
	CardHolder      string
	EntryMethod     string
	AccountType     string
	RetRef          string
	HostRefNum      string
	DeviceOrgRefNum string
	GiftCardNumber  string
}

// Payment kinds.
const (
	KindCard     = "card"
	KindGiftCard = "gift_card"
)
