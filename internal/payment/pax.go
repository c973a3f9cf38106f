package payment

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// POSLink framing bytes.
const (
	paxSTX = 0x02
	paxETX = 0x03
	paxFS  = 0x1C
	paxUS  = 0x1F
)

// POSLink commands.
const (
	paxCmdDoCredit   = "T00"
	paxCmdCancel     = "A14"
	paxCmdBatchClose = "B00"

	paxProtoVersion = "1.28"

	// paxApproved is the only response code that means money moved.
	paxApproved = "000000"
)

// paxTransTypes maps kiosk transaction types to POSLink codes.
var paxTransTypes = map[string]string{
	TransTypeSaleCode: "01",
}

// TransTypeSaleCode mirrors models.TransTypeSale without importing models
// into the terminal driver.
const TransTypeSaleCode = "SALE"

// PaxTerminal drives a PAX payment terminal over its TCP POSLink port
// (10009 by default). It implements Terminal.
//
// One transaction runs at a time; a second Charge while one is in flight
// waits on the terminal, not on this driver.
type PaxTerminal struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn // in-flight transaction connection, for Cancel
}

func NewPaxTerminal(host string, port int, timeout time.Duration) *PaxTerminal {
	return &PaxTerminal{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		timeout: timeout,
	}
}

var _ Terminal = (*PaxTerminal)(nil)

// Charge runs one DoCredit transaction on the terminal.
func (t *PaxTerminal) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	transType, ok := paxTransTypes[req.TransType]
	if !ok {
		return nil, fmt.Errorf("unsupported transaction type %q", req.TransType)
	}

	cents := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	fields := []string{
		paxCmdDoCredit,
		paxProtoVersion,
		transType,
		strconv.FormatInt(cents, 10), // amount information
		"",                           // account information
		req.Reference,                // trace information
		"", "", "", "",               // avs, cashier, commercial, moto
		"ENTRYMODE=" + strconv.Itoa(int(req.EntryModes)),
	}

	raw, err := t.roundTrip(ctx, fields)
	if err != nil {
		return nil, err
	}
	return parseChargeResponse(raw)
}

// Cancel tells the terminal to abort the in-flight operation and closes the
// transaction connection so the blocked Charge returns promptly.
func (t *PaxTerminal) Cancel(ctx context.Context) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	// The cancel command travels on its own connection; the transaction
	// connection is busy.
	if _, err := t.exchange(ctx, []string{paxCmdCancel, paxProtoVersion}); err != nil {
		if conn != nil {
			conn.Close()
		}
		return fmt.Errorf("cancel: %w", err)
	}
	if conn != nil {
		conn.Close()
	}
	return nil
}

// CloseBatch settles the open batch on the terminal.
func (t *PaxTerminal) CloseBatch(ctx context.Context) error {
	raw, err := t.exchange(ctx, []string{paxCmdBatchClose, paxProtoVersion})
	if err != nil {
		return fmt.Errorf("batch close: %w", err)
	}
	fields := splitFrame(raw)
	if len(fields) < 4 || fields[3] != paxApproved {
		return fmt.Errorf("batch close rejected: %s", frameMessage(fields))
	}
	slog.Info("Batch closed")
	return nil
}

// roundTrip runs a transaction exchange, tracking the connection so Cancel
// can interrupt it.
func (t *PaxTerminal) roundTrip(ctx context.Context, fields []string) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("connect terminal %s: %w", t.addr, err)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.conn = nil
		t.mu.Unlock()
		conn.Close()
	}()

	return t.talk(ctx, conn, fields)
}

// exchange runs a short management exchange on a fresh connection.
func (t *PaxTerminal) exchange(ctx context.Context, fields []string) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("connect terminal %s: %w", t.addr, err)
	}
	defer conn.Close()
	return t.talk(ctx, conn, fields)
}

func (t *PaxTerminal) talk(ctx context.Context, conn net.Conn, fields []string) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(buildFrame(fields)); err != nil {
		return nil, fmt.Errorf("write to terminal: %w", err)
	}
	return readFrame(bufio.NewReader(conn))
}

// buildFrame wraps fields in STX..ETX framing with a trailing LRC. The LRC
// is the XOR of every byte after STX, ETX included.
func buildFrame(fields []string) []byte {
	body := []byte(strings.Join(fields, string(rune(paxFS))))
	frame := make([]byte, 0, len(body)+3)
	frame = append(frame, paxSTX)
	frame = append(frame, body...)
	frame = append(frame, paxETX)

	var lrc byte
	for _, b := range frame[1:] {
		lrc ^= b
	}
	return append(frame, lrc)
}

// readFrame reads one STX..ETX frame and verifies the LRC. The payload
// between the markers is returned.
func readFrame(r *bufio.Reader) ([]byte, error) {
	if _, err := r.ReadBytes(paxSTX); err != nil {
		return nil, fmt.Errorf("read from terminal: %w", err)
	}
	body, err := r.ReadBytes(paxETX)
	if err != nil {
		return nil, fmt.Errorf("read from terminal: %w", err)
	}
	lrc, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read lrc: %w", err)
	}

	var want byte
	for _, b := range body {
		want ^= b
	}
	if lrc != want {
		return nil, fmt.Errorf("terminal frame lrc mismatch: got %#x want %#x", lrc, want)
	}
	return body[:len(body)-1], nil
}

// Response field positions in a T01 frame.
const (
	respFieldCommand = 0
	respFieldVersion = 1
	respFieldCode    = 2
	respFieldMessage = 3
	respFieldHost    = 4
	respFieldType    = 5
	respFieldAmount  = 6
	respFieldAccount = 7
)

// Host-information subfield positions.
const (
	hostSubCode    = 0
	hostSubMessage = 1
	hostSubAuth    = 2
	hostSubRefNum  = 3
)

// Account-information subfield positions.
const (
	acctSubAccount   = 0
	acctSubEntryMode = 1
	acctSubCardType  = 6
)

func splitFrame(raw []byte) []string {
	return strings.Split(string(raw), string(rune(paxFS)))
}

func splitGroup(field string) []string {
	return strings.Split(field, string(rune(paxUS)))
}

func groupAt(fields []string, idx int) []string {
	if idx >= len(fields) {
		return nil
	}
	return splitGroup(fields[idx])
}

func subAt(group []string, idx int) string {
	if idx >= len(group) {
		return ""
	}
	return group[idx]
}

func frameMessage(fields []string) string {
	if len(fields) > respFieldMessage {
		return fields[respFieldMessage]
	}
	return "no response message"
}

// entryModeNames maps the terminal's reported entry-mode code to the label
// recorded on the transaction.
var entryModeNames = map[string]string{
	"0": "MANUAL",
	"1": "SWIPE",
	"2": "CONTACTLESS",
	"3": "SCANNER",
	"4": "CHIP",
	"5": "CHIP_FALLBACK_SWIPE",
}

// parseChargeResponse converts a raw T01 frame into the typed result. Only
// this function reads the positional wire layout.
func parseChargeResponse(raw []byte) (*ChargeResult, error) {
	fields := splitFrame(raw)
	if len(fields) <= respFieldMessage {
		return nil, fmt.Errorf("short terminal response: %d fields", len(fields))
	}

	res := &ChargeResult{
		Code:    fields[respFieldCode],
		Message: fields[respFieldMessage],
	}
	res.Approved = res.Code == paxApproved

	host := groupAt(fields, respFieldHost)
	if msg := subAt(host, hostSubMessage); res.Message == "" && msg != "" {
		res.Message = msg
	}
	res.AuthCode = subAt(host, hostSubAuth)
	res.HostRefNum = subAt(host, hostSubRefNum)

	amount := groupAt(fields, respFieldAmount)
	if cents := subAt(amount, 0); cents != "" {
		n, err := strconv.ParseInt(cents, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad approved amount %q: %w", cents, err)
		}
		res.ApprovedAmount = decimal.New(n, -2)
	}

	account := groupAt(fields, respFieldAccount)
	res.MaskedAccount = maskAccount(subAt(account, acctSubAccount))
	res.CardType = subAt(account, acctSubCardType)
	if name, ok := entryModeNames[subAt(account, acctSubEntryMode)]; ok {
		res.EntryMethod = name
	}
	return res, nil
}

// maskAccount hides everything but the last four digits. Terminals usually
// pre-mask, but nothing downstream should depend on that.
func maskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	return strings.Repeat("*", len(account)-4) + account[len(account)-4:]
}
