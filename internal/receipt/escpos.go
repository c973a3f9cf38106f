// Package receipt renders customer receipts and kitchen tickets as ESC/POS
// byte streams and delivers them to a network thermal printer.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/poslite/kiosk/internal/models"
)

// ESC/POS command sequences for common 80mm thermal printers.
var (
	cmdReset      = []byte{0x1B, 0x40}
	cmdBoldOn     = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff    = []byte{0x1B, 0x45, 0x00}
	cmdCenter     = []byte{0x1B, 0x61, 0x01}
	cmdLeft       = []byte{0x1B, 0x61, 0x00}
	cmdRight      = []byte{0x1B, 0x61, 0x02}
	cmdSizeNormal = []byte{0x1D, 0x21, 0x00}
	cmdSizeDouble = []byte{0x1D, 0x21, 0x11}
	cmdFeed       = []byte{0x0A}
	cmdCut        = []byte{0x1D, 0x56, 0x41, 0x03}
)

const divider = "--------------------------------------"

type builder struct {
	buf bytes.Buffer
}

func (b *builder) cmd(c []byte)  { b.buf.Write(c) }
func (b *builder) text(s string) { b.buf.WriteString(s) }

func (b *builder) line(s string) {
	b.buf.WriteString(s)
	b.buf.Write(cmdFeed)
}

// Receipt renders the customer receipt for a finalized transaction.
func Receipt(rec *models.TransactionRecord, biz models.BusinessInfo) []byte {
	var b builder
	b.cmd(cmdReset)
	b.cmd(cmdCenter)
	b.cmd(cmdBoldOn)
	b.cmd(cmdSizeDouble)
	if biz.Name != "" {
		b.line(biz.Name)
	} else {
		b.line("RECEIPT")
	}
	b.cmd(cmdBoldOff)
	b.cmd(cmdSizeNormal)
	if biz.Address != "" {
		b.line(biz.Address)
	}
	if biz.CityStateZip != "" {
		b.line(biz.CityStateZip)
	}

	b.line(fmt.Sprintf("Order: %s", rec.ShortCode))
	b.line(fmt.Sprintf("Invoice: %d", rec.InvoiceID))
	b.line(fmt.Sprintf("Date: %s", rec.SaleTime.Format("2006-01-02 15:04:05")))
	if rec.CustomerName != "" {
		b.line(fmt.Sprintf("Name: %s", rec.CustomerName))
	}
	b.cmd(cmdFeed)

	b.cmd(cmdLeft)
	b.line("ITEM                     QTY    PRICE")
	b.line(divider)
	for _, item := range rec.Items {
		name := item.Name
		if item.Type == models.TransItemTypeModifier {
			name = "  + " + name
		}
		b.line(fmt.Sprintf("%-24.24s%4d%9s", name, item.Quantity, item.Amount.StringFixed(2)))
	}
	b.line(divider)

	b.cmd(cmdRight)
	b.line(fmt.Sprintf("SUBTOTAL: %s", rec.Subtotal.StringFixed(2)))
	b.line(fmt.Sprintf("TAX: %s", rec.Tax.StringFixed(2)))
	b.cmd(cmdBoldOn)
	b.line(fmt.Sprintf("TOTAL: %s", rec.GrandTotal.StringFixed(2)))
	b.cmd(cmdBoldOff)
	b.line(fmt.Sprintf("PAID BY: %s", rec.PaidBy))

	b.cmd(cmdFeed)
	b.cmd(cmdCenter)
	for _, footer := range []string{biz.Footer1, biz.Footer2, biz.Footer3, biz.Footer4} {
		if footer != "" {
			b.line(footer)
		}
	}
	b.line("THANK YOU!")
	b.cmd(cmdFeed)
	b.cmd(cmdCut)
	return b.buf.Bytes()
}

// KitchenTicket renders the paper backup for the kitchen: order code and
// quantities only, no prices.
func KitchenTicket(rec *models.TransactionRecord) []byte {
	var b builder
	b.cmd(cmdReset)
	b.cmd(cmdCenter)
	b.cmd(cmdBoldOn)
	b.cmd(cmdSizeDouble)
	b.line("KITCHEN TICKET")
	b.line(fmt.Sprintf("Order: %s", rec.ShortCode))
	b.cmd(cmdLeft)
	b.cmd(cmdSizeNormal)
	b.cmd(cmdBoldOff)
	b.cmd(cmdFeed)

	for _, item := range rec.Items {
		prefix := ""
		if item.Type == models.TransItemTypeModifier {
			prefix = "   + "
		}
		b.line(fmt.Sprintf("%s%d x %s", prefix, item.Quantity, item.Name))
	}

	b.cmd(cmdFeed)
	b.cmd(cmdFeed)
	b.cmd(cmdCut)
	return b.buf.Bytes()
}
