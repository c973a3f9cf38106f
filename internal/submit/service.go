package submit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poslite/kiosk/internal/kiosk"
	"github.com/poslite/kiosk/internal/metrics"
	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/payment"
	"github.com/poslite/kiosk/internal/storage"
)

// Uploader sends a finalized record to the transaction server.
type Uploader interface {
	Upload(ctx context.Context, rec *models.TransactionRecord) error
}

// Printer produces the customer receipt and the kitchen ticket. Both are
// best-effort at submission time; a dead printer never loses an order.
type Printer interface {
	PrintReceipt(ctx context.Context, rec *models.TransactionRecord) error
	PrintKitchenTicket(ctx context.Context, rec *models.TransactionRecord) error
}

// Service finalizes orders. The ordering of its steps is the durability
// contract: the invoice id is claimed and the record persisted locally
// before any print or upload is attempted, so a crash, printer fault or
// network outage after that point can delay but never lose the order.
type Service struct {
	queue    storage.TransactionQueue
	counter  storage.InvoiceCounter
	uploader Uploader
	printer  Printer

	stationID string
	cashierID string
}

func NewService(queue storage.TransactionQueue, counter storage.InvoiceCounter, uploader Uploader, printer Printer, stationID, cashierID string) *Service {
	return &Service{
		queue:     queue,
		counter:   counter,
		uploader:  uploader,
		printer:   printer,
		stationID: stationID,
		cashierID: cashierID,
	}
}

// Submit freezes and finalizes the order. It returns the frozen record on
// success; only a durability failure (counter or local queue) returns an
// error, because past that point the order exists regardless of what the
// printer or the network do.
func (s *Service) Submit(ctx context.Context, state kiosk.State, pay *payment.Result) (*models.TransactionRecord, error) {
	invoiceID, err := s.counter.NextInvoiceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim invoice id: %w", err)
	}

	rec := BuildRecord(state, pay, invoiceID, time.Now(), s.stationID, s.cashierID)

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist transaction %d: %w", invoiceID, err)
	}
	slog.Info("Transaction persisted",
		"invoiceId", rec.InvoiceID,
		"shortCode", rec.ShortCode,
		"grandTotal", rec.GrandTotal,
		"paidBy", rec.PaidBy)

	s.print(ctx, rec, state.Online)

	if !state.Online {
		metrics.OrdersSubmitted.WithLabelValues("queued").Inc()
		return rec, nil
	}

	if err := s.uploader.Upload(ctx, rec); err != nil {
		slog.Warn("Upload failed, transaction stays queued", "invoiceId", rec.InvoiceID, "error", err)
		metrics.OrdersSubmitted.WithLabelValues("queued").Inc()
		return rec, nil
	}
	rec.Uploaded = true
	if err := s.queue.Dequeue(ctx, rec.InvoiceID); err != nil {
		slog.Error("Failed to dequeue uploaded transaction", "invoiceId", rec.InvoiceID, "error", err)
	}
	metrics.OrdersSubmitted.WithLabelValues("online").Inc()
	return rec, nil
}

// print runs the best-effort print jobs. The kitchen ticket is a paper
// backup for the kitchen and only printed while offline; online, the kitchen
// sees the order through the backend.
func (s *Service) print(ctx context.Context, rec *models.TransactionRecord, online bool) {
	if err := s.printer.PrintReceipt(ctx, rec); err != nil {
		metrics.ReceiptPrints.WithLabelValues("receipt", "failed").Inc()
		slog.Warn("Receipt print failed", "invoiceId", rec.InvoiceID, "error", err)
	} else {
		metrics.ReceiptPrints.WithLabelValues("receipt", "ok").Inc()
	}

	if online {
		return
	}
	if err := s.printer.PrintKitchenTicket(ctx, rec); err != nil {
		metrics.ReceiptPrints.WithLabelValues("kitchen", "failed").Inc()
		slog.Warn("Kitchen ticket print failed", "invoiceId", rec.InvoiceID, "error", err)
	} else {
		metrics.ReceiptPrints.WithLabelValues("kitchen", "ok").Inc()
	}
}
