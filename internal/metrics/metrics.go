// Package metrics holds the kiosk's Prometheus collectors. Collectors are
// registered at init via promauto and shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentAttempts counts charge attempts by kind (card, gift_card) and
	// outcome (approved, declined, failed, error, cancelled).
	PaymentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kiosk",
		Subsystem: "payment",
		Name:      "attempts_total",
		Help:      "Payment attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	// OrdersSubmitted counts finalized orders by upload path (online,
	// queued).
	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kiosk",
		Subsystem: "orders",
		Name:      "submitted_total",
		Help:      "Orders finalized locally, by upload path.",
	}, []string{"path"})

	// UploadRetries counts queued-transaction upload attempts by outcome
	// (ok, failed).
	UploadRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kiosk",
		Subsystem: "orders",
		Name:      "upload_retries_total",
		Help:      "Queued transaction upload attempts by outcome.",
	}, []string{"outcome"})

	// QueueDepth tracks the number of transactions waiting for upload.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kiosk",
		Subsystem: "orders",
		Name:      "queue_depth",
		Help:      "Transactions persisted locally and not yet uploaded.",
	})

	// Online reports the last connectivity probe result (1 online, 0
	// offline).
	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kiosk",
		Subsystem: "connectivity",
		Name:      "online",
		Help:      "Whether the last connectivity probe succeeded.",
	})

	// ReceiptPrints counts print jobs by document (receipt, kitchen) and
	// outcome (ok, failed).
	ReceiptPrints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kiosk",
		Subsystem: "printer",
		Name:      "prints_total",
		Help:      "Print jobs by document and outcome.",
	}, []string{"document", "outcome"})
)
