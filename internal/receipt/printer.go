package receipt

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/poslite/kiosk/internal/models"
)

// Printer delivers rendered documents to a raw-socket network printer
// (TCP 9100 on most thermal printers). It implements submit.Printer.
type Printer struct {
	addr string
	biz  models.BusinessInfo

	// dial is swappable for tests.
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

func NewPrinter(addr string, biz models.BusinessInfo) *Printer {
	return &Printer{
		addr: addr,
		biz:  biz,
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

func (p *Printer) PrintReceipt(ctx context.Context, rec *models.TransactionRecord) error {
	return p.send(ctx, Receipt(rec, p.biz))
}

func (p *Printer) PrintKitchenTicket(ctx context.Context, rec *models.TransactionRecord) error {
	return p.send(ctx, KitchenTicket(rec))
}

func (p *Printer) send(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx, p.addr)
	if err != nil {
		return fmt.Errorf("connect printer %s: %w", p.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write to printer %s: %w", p.addr, err)
	}
	return nil
}
