// Package storage provides abstractions for the kiosk's durable local state.
package storage

import (
	"context"
	"errors"

	"github.com/poslite/kiosk/internal/models"
)

// ErrNotFound is returned when a requested key or record does not exist.
var ErrNotFound = errors.New("not found")

// SettingsStore persists the opaque settings blob.
type SettingsStore interface {
	// SaveSettings replaces the stored settings blob.
	SaveSettings(ctx context.Context, settings *models.Settings) error

	// LoadSettings returns the stored settings, or ErrNotFound when the
	// device has never been configured.
	LoadSettings(ctx context.Context) (*models.Settings, error)
}

// CatalogCache persists the last successfully fetched menu snapshot so the
// kiosk can keep selling through a backend outage.
type CatalogCache interface {
	SaveCatalog(ctx context.Context, catalog *models.Catalog) error

	// LoadCatalog returns the cached snapshot, or ErrNotFound when no fetch
	// has ever succeeded.
	LoadCatalog(ctx context.Context) (*models.Catalog, error)
}

// TransactionQueue is the durable offline queue of transaction records not
// yet acknowledged by the backend. Records are listed in enqueue (FIFO)
// order and removed by invoice id, never by position.
type TransactionQueue interface {
	Enqueue(ctx context.Context, record *models.TransactionRecord) error
	ListQueued(ctx context.Context) ([]*models.TransactionRecord, error)
	Dequeue(ctx context.Context, invoiceID int64) error
}

// InvoiceCounter issues strictly increasing invoice identifiers. The counter
// is durable: it survives process restarts.
type InvoiceCounter interface {
	NextInvoiceID(ctx context.Context) (int64, error)
}

// Store is the full durable-storage surface consumed by the order engine.
// The abstraction allows swapping backends without changing the engine.
type Store interface {
	SettingsStore
	CatalogCache
	TransactionQueue
	InvoiceCounter

	// Close releases any resources held by the store.
	Close() error
}
