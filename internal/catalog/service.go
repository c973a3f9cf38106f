package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

// Fetcher is what the service needs from the cloud client.
type Fetcher interface {
	GetCatalog(ctx context.Context) (*models.Catalog, error)
	GetTaxRates(ctx context.Context) ([]models.TaxRate, error)
}

// Service keeps the kiosk's menu current. Every successful fetch is written
// through to the local cache; when the backend is unreachable the service
// serves the last cached snapshot so ordering continues offline.
type Service struct {
	fetcher Fetcher
	cache   storage.CatalogCache
}

func NewService(fetcher Fetcher, cache storage.CatalogCache) *Service {
	return &Service{fetcher: fetcher, cache: cache}
}

// Refresh fetches a fresh snapshot, falling back to the cache on failure.
// Only when both the fetch and the cache fail is an error returned; the
// kiosk has nothing to sell then.
func (s *Service) Refresh(ctx context.Context) (*Menu, error) {
	catalog, err := s.fetcher.GetCatalog(ctx)
	if err == nil {
		// The rate table lives on its own endpoint; attach it before
		// caching so the offline snapshot keeps the store default rate.
		rates, ratesErr := s.fetcher.GetTaxRates(ctx)
		if ratesErr != nil {
			slog.Warn("Tax rate fetch failed, store default rate unavailable", "error", ratesErr)
		} else {
			catalog.TaxRates = rates
		}

		if saveErr := s.cache.SaveCatalog(ctx, catalog); saveErr != nil {
			slog.Error("Failed to cache catalog", "error", saveErr)
		}
		slog.Info("Catalog refreshed",
			"items", len(catalog.Items),
			"departments", len(catalog.Departments),
			"taxRates", len(catalog.TaxRates))
		return NewMenu(catalog), nil
	}

	slog.Warn("Catalog fetch failed, trying cache", "error", err)
	cached, cacheErr := s.cache.LoadCatalog(ctx)
	if cacheErr != nil {
		if errors.Is(cacheErr, storage.ErrNotFound) {
			return nil, fmt.Errorf("no catalog available: %w", err)
		}
		return nil, fmt.Errorf("load cached catalog: %w", cacheErr)
	}
	slog.Info("Serving cached catalog", "items", len(cached.Items))
	return NewMenu(cached), nil
}
