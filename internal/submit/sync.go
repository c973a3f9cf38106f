package submit

import (
	"context"
	"log/slog"
	"time"

	"github.com/poslite/kiosk/internal/metrics"
	"github.com/poslite/kiosk/internal/storage"
)

// Syncer drains the offline queue in the background: on a timer, and
// immediately when kicked by a connectivity transition. Records upload
// oldest first, and a single failure stops the pass; retrying younger
// records behind a failing older one would reorder arrival at the backend.
type Syncer struct {
	queue    storage.TransactionQueue
	uploader Uploader
	interval time.Duration
	kick     chan struct{}
}

func NewSyncer(queue storage.TransactionQueue, uploader Uploader, interval time.Duration) *Syncer {
	return &Syncer{
		queue:    queue,
		uploader: uploader,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate drain pass. Safe to call from any goroutine;
// kicks coalesce while a pass is pending.
func (s *Syncer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run drains until ctx is cancelled. Call it in its own goroutine.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.drain(ctx)
		case <-s.kick:
			s.drain(ctx)
		}
	}
}

// drain is one pass over the queue.
func (s *Syncer) drain(ctx context.Context) {
	pending, err := s.queue.ListQueued(ctx)
	if err != nil {
		slog.Error("Failed to list queued transactions", "error", err)
		return
	}
	// QueueDepth has a single writer: each pass sets it, then counts down
	// as records leave the queue.
	metrics.QueueDepth.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	slog.Info("Draining offline queue", "pending", len(pending))
	for _, rec := range pending {
		if ctx.Err() != nil {
			return
		}
		if err := s.uploader.Upload(ctx, rec); err != nil {
			metrics.UploadRetries.WithLabelValues("failed").Inc()
			slog.Warn("Queued upload failed, stopping pass",
				"invoiceId", rec.InvoiceID, "error", err)
			return
		}
		metrics.UploadRetries.WithLabelValues("ok").Inc()
		if err := s.queue.Dequeue(ctx, rec.InvoiceID); err != nil {
			slog.Error("Failed to dequeue uploaded transaction",
				"invoiceId", rec.InvoiceID, "error", err)
			return
		}
		metrics.QueueDepth.Dec()
		slog.Info("Queued transaction uploaded", "invoiceId", rec.InvoiceID)
	}
}
