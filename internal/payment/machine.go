package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/metrics"
	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/secure"
)

// Step is the current position in the payment flow.
type Step string

const (
	StepSelect             Step = "select"
	StepCardMethodSelect   Step = "card_method_select"
	StepCardProcessing     Step = "card_processing"
	StepGiftCardEntry      Step = "gift_card_entry"
	StepGiftCardProcessing Step = "gift_card_processing"
	StepApproved           Step = "approved"
)

// giftTokenMinLen is the shortest gift-card token accepted before a balance
// check is allowed.
const giftTokenMinLen = 4

var (
	ErrWrongStep           = errors.New("operation not allowed in current payment step")
	ErrDeclined            = errors.New("payment declined")
	ErrCancelled           = errors.New("payment cancelled")
	ErrGiftTokenTooShort   = errors.New("gift card number too short")
	ErrInsufficientBalance = errors.New("gift card balance is insufficient")
	ErrBalanceUnverified   = errors.New("unable to verify gift card")
)

// IdleSuspender disarms the inactivity timer while a charge is in flight so
// an idle reset cannot abort an active terminal operation.
type IdleSuspender interface {
	Suspend()
	Resume()
}

// Machine drives the payment step sequence for one order. A payment failure
// is never fatal to the order: the cart and customer identity live elsewhere
// and are untouched, so the customer can retry or switch methods.
//
// PayCard and RedeemGiftCard block for the duration of the host call, so
// Cancel is expected to arrive from a different goroutine while one of them
// is in flight. A mutex guards the flow state; when a cancel lands during a
// blocked attempt, the cancelled attempt resolves to StepSelect and its
// result is discarded, whatever the host answered.
type Machine struct {
	terminal  Terminal
	giftCards GiftCards

	// total recomputes the grand total at charge time; no earlier cached
	// amount is trusted.
	total func() decimal.Decimal

	idle IdleSuspender

	mu        sync.Mutex
	step      Step
	message   string
	cancelled bool

	giftToken   string
	giftBalance decimal.NullDecimal
}

// NewMachine builds a payment machine. idle may be nil when no inactivity
// timer is wired.
func NewMachine(terminal Terminal, giftCards GiftCards, total func() decimal.Decimal, idle IdleSuspender) *Machine {
	return &Machine{
		terminal:  terminal,
		giftCards: giftCards,
		total:     total,
		idle:      idle,
		step:      StepSelect,
	}
}

// Step returns the current flow position.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Message returns the customer-facing error message for the current step,
// empty when there is none.
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// GiftBalance returns the last checked gift-card balance. The balance is
// shown even when it is insufficient.
func (m *Machine) GiftBalance() (decimal.Decimal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.giftBalance.Decimal, m.giftBalance.Valid
}

// Reset returns the machine to the method-selection step for a new order.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = StepSelect
	m.message = ""
	m.giftToken = ""
	m.giftBalance = decimal.NullDecimal{}
}

// SelectCard moves from select to the card sub-method choice.
func (m *Machine) SelectCard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepSelect {
		return ErrWrongStep
	}
	m.step = StepCardMethodSelect
	m.message = ""
	return nil
}

// SelectGiftCard moves from select to gift-card entry.
func (m *Machine) SelectGiftCard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepSelect {
		return ErrWrongStep
	}
	m.step = StepGiftCardEntry
	m.message = ""
	return nil
}

// Back returns to the select step from a sub-method or entry step.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepCardMethodSelect || m.step == StepGiftCardEntry {
		m.step = StepSelect
		m.message = ""
	}
}

// PayCard runs one charge attempt with the entry-mode preset for the chosen
// method. On approval the machine parks in StepApproved and the caller hands
// the result to order submission. On decline or error the machine returns to
// card method selection carrying a message, ready for a retry. A Cancel that
// arrives while the charge is blocked wins: the attempt returns ErrCancelled
// and the machine stays at select.
func (m *Machine) PayCard(ctx context.Context, method Method) (*Result, error) {
	m.mu.Lock()
	if m.step != StepCardMethodSelect {
		m.mu.Unlock()
		return nil, ErrWrongStep
	}
	m.step = StepCardProcessing
	m.message = ""
	m.cancelled = false
	m.mu.Unlock()

	if m.idle != nil {
		m.idle.Suspend()
		defer m.idle.Resume()
	}

	amount := m.total()
	ref := newReference()
	slog.Info("Starting card charge", "method", method, "amount", amount, "ref", ref)

	res, err := m.terminal.Charge(ctx, ChargeRequest{
		TransType:  models.TransTypeSale,
		Amount:     amount,
		EntryModes: method.EntryModes(),
		Reference:  ref,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelled {
		// Cancel already moved the flow back to select; whatever the
		// terminal answered, this attempt is void.
		slog.Info("Discarding cancelled charge attempt", "ref", ref)
		return nil, ErrCancelled
	}
	if err != nil {
		metrics.PaymentAttempts.WithLabelValues(KindCard, "error").Inc()
		m.step = StepCardMethodSelect
		m.message = "Payment failed. Please try again."
		slog.Error("Card charge failed", "error", err, "ref", ref)
		return nil, fmt.Errorf("charge: %w", err)
	}
	if !res.Approved {
		metrics.PaymentAttempts.WithLabelValues(KindCard, "declined").Inc()
		m.step = StepCardMethodSelect
		m.message = res.Message
		if m.message == "" {
			m.message = "Payment Declined"
		}
		slog.Warn("Card charge declined", "code", res.Code, "message", res.Message, "ref", ref)
		return nil, fmt.Errorf("%w: %s", ErrDeclined, m.message)
	}

	metrics.PaymentAttempts.WithLabelValues(KindCard, "approved").Inc()
	m.step = StepApproved

	approved := amount
	if res.ApprovedAmount.IsPositive() {
		approved = res.ApprovedAmount
	}
	entryMethod := res.EntryMethod
	if entryMethod == "" {
		entryMethod = strings.ToUpper(string(method))
	}
	retRef := res.HostRefNum
	if retRef == "" {
		retRef = ref
	}

	return &Result{
		Kind:            KindCard,
		Amount:          approved,
		CardNumber:      res.MaskedAccount,
		CardType:        res.CardType,
		CardHolder:      "CUSTOMER",
		EntryMethod:     entryMethod,
		AccountType:     "CREDIT",
		RetRef:          retRef,
		HostRefNum:      res.AuthCode,
		DeviceOrgRefNum: fmt.Sprintf("D%d", time.Now().UnixMilli()),
	}, nil
}

// Cancel aborts the flow and returns to select unconditionally. Local state
// flips first, under the lock, so an in-flight attempt that unblocks
// afterwards finds the cancelled flag and discards its result. The terminal
// cancel for an in-flight card charge is advisory and best-effort; a
// gift-host redemption has no abort channel, so its result is only discarded
// locally.
func (m *Machine) Cancel(ctx context.Context) {
	m.mu.Lock()
	inFlight := m.step
	m.cancelled = inFlight == StepCardProcessing || inFlight == StepGiftCardProcessing
	m.step = StepSelect
	m.message = ""
	m.mu.Unlock()

	switch inFlight {
	case StepCardProcessing:
		if err := m.terminal.Cancel(ctx); err != nil {
			slog.Warn("Terminal cancel failed", "error", err)
		}
		metrics.PaymentAttempts.WithLabelValues(KindCard, "cancelled").Inc()
	case StepGiftCardProcessing:
		metrics.PaymentAttempts.WithLabelValues(KindGiftCard, "cancelled").Inc()
	}
}

// CheckGiftBalance validates the entered token and asks the gift-card host
// for its balance. On an insufficient balance the entry step stays open, the
// balance is recorded for display, and ErrInsufficientBalance is returned.
func (m *Machine) CheckGiftBalance(ctx context.Context, token string) error {
	m.mu.Lock()
	if m.step != StepGiftCardEntry {
		m.mu.Unlock()
		return ErrWrongStep
	}

	clean := normalizeToken(token)
	if len(clean) < giftTokenMinLen {
		m.message = "Please enter a valid gift card number"
		m.mu.Unlock()
		return ErrGiftTokenTooShort
	}
	m.message = ""
	m.mu.Unlock()

	res, err := m.giftCards.CheckBalance(ctx, clean)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil || !res.OK {
		m.giftBalance = decimal.NullDecimal{}
		m.message = "Unable to verify gift card. Please check the number and try again."
		if err != nil {
			slog.Error("Gift card balance check failed", "error", err)
			return fmt.Errorf("%w: %v", ErrBalanceUnverified, err)
		}
		return ErrBalanceUnverified
	}

	m.giftToken = clean
	m.giftBalance = decimal.NullDecimal{Decimal: res.Balance, Valid: true}

	if total := m.total(); res.Balance.LessThan(total) {
		m.message = fmt.Sprintf("Gift card balance ($%s) is insufficient. Total: $%s",
			res.Balance.StringFixed(2), total.StringFixed(2))
		return ErrInsufficientBalance
	}
	return nil
}

// CanRedeem reports whether a checked balance covers the grand total.
func (m *Machine) CanRedeem() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canRedeemLocked()
}

func (m *Machine) canRedeemLocked() bool {
	return m.step == StepGiftCardEntry &&
		m.giftBalance.Valid &&
		!m.giftBalance.Decimal.LessThan(m.total())
}

// RedeemGiftCard redeems exactly the grand total from the checked card. On
// failure the machine returns to entry with a message.
func (m *Machine) RedeemGiftCard(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	if !m.canRedeemLocked() {
		defer m.mu.Unlock()
		if m.step == StepGiftCardEntry {
			m.message = "Insufficient gift card balance."
			return nil, ErrInsufficientBalance
		}
		return nil, ErrWrongStep
	}
	m.step = StepGiftCardProcessing
	m.message = ""
	m.cancelled = false
	token := m.giftToken
	m.mu.Unlock()

	if m.idle != nil {
		m.idle.Suspend()
		defer m.idle.Resume()
	}

	amount := m.total()
	res, err := m.giftCards.Redeem(ctx, token, amount)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelled {
		slog.Info("Discarding cancelled gift card redemption")
		return nil, ErrCancelled
	}
	if err != nil || !res.OK {
		metrics.PaymentAttempts.WithLabelValues(KindGiftCard, "failed").Inc()
		m.step = StepGiftCardEntry
		m.message = "Gift card redemption failed. Please try again."
		if err == nil && res.Description != "" {
			m.message = res.Description
		}
		if err != nil {
			slog.Error("Gift card redemption failed", "error", err)
			return nil, fmt.Errorf("redeem: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrDeclined, m.message)
	}

	metrics.PaymentAttempts.WithLabelValues(KindGiftCard, "approved").Inc()
	m.step = StepApproved

	return &Result{
		Kind:           KindGiftCard,
		Amount:         amount,
		GiftCardNumber: secure.MaskCardNumber(token),
		HostRefNum:     res.HostRef,
	}, nil
}

func normalizeToken(token string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(token)
}

// newReference derives a per-attempt ECR reference from the current time.
func newReference() string {
	return fmt.Sprintf("REF%d", time.Now().UnixNano())
}
