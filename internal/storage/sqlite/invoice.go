package sqlite

import (
	"context"
	"fmt"
)

// invoiceFloor is the counter's starting value on a fresh device; the first
// issued invoice id is invoiceFloor+1.
const invoiceFloor = 1000

// NextInvoiceID atomically increments and returns the durable invoice
// counter. Allocation is strictly sequential per device: only one order is
// active at a time per kiosk session.
func (s *SQLiteStore) NextInvoiceID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES ('last_invoice_id', ?)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`,
		invoiceFloor+1,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate invoice id: %w", err)
	}
	return id, nil
}
