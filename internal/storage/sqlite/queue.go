package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

// Enqueue appends a frozen transaction record to the offline queue. The row
// is keyed by invoice id so a later dequeue removes exactly the acknowledged
// record, never a neighbor.
func (s *SQLiteStore) Enqueue(ctx context.Context, record *models.TransactionRecord) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %d: %w", record.InvoiceID, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pending_transactions (invoice_id, enqueued_at, record) VALUES (?, ?, ?)",
		record.InvoiceID, time.Now().UnixNano(), string(blob),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue transaction %d: %w", record.InvoiceID, err)
	}
	return nil
}

// ListQueued returns all pending records in enqueue (FIFO) order.
func (s *SQLiteStore) ListQueued(ctx context.Context) ([]*models.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT record FROM pending_transactions ORDER BY enqueued_at, invoice_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued transactions: %w", err)
	}
	defer rows.Close()

	var records []*models.TransactionRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan queued transaction: %w", err)
		}
		record := &models.TransactionRecord{}
		if err := json.Unmarshal([]byte(blob), record); err != nil {
			return nil, fmt.Errorf("failed to decode queued transaction: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queued transactions: %w", err)
	}
	return records, nil
}

// Dequeue removes the record with the given invoice id after the backend has
// acknowledged it.
func (s *SQLiteStore) Dequeue(ctx context.Context, invoiceID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_transactions WHERE invoice_id = ?", invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to dequeue transaction %d: %w", invoiceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to dequeue transaction %d: %w", invoiceID, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
