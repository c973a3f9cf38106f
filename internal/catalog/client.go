// Package catalog fetches the menu snapshot from the cloud POS API, caches
// it locally, and exposes the filtered views the kiosk renders: visible
// departments, sellable items per department, and resolved modifier groups.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/poslite/kiosk/internal/models"
)

// Client talks to the cloud POS API. The database name travels in the "db"
// header on every request; the upstream routes tenants by it.
type Client struct {
	http    *http.Client
	baseURL string
	db      string
}

func NewClient(baseURL, db string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		db:      db,
	}
}

// GetCatalog fetches the complete menu snapshot.
func (c *Client) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := c.get(ctx, "/POS", &catalog); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return &catalog, nil
}

// GetTaxRates fetches the store-level tax rate table.
func (c *Client) GetTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	var rates []models.TaxRate
	if err := c.get(ctx, "/TaxRate", &rates); err != nil {
		return nil, fmt.Errorf("fetch tax rates: %w", err)
	}
	return rates, nil
}

// LookupCustomer searches the loyalty database by phone number. A miss is
// reported as (nil, nil); errors are transport or server failures only.
func (c *Client) LookupCustomer(ctx context.Context, phone string) (*models.LoyaltyProfile, error) {
	var profiles []models.LoyaltyProfile
	path := "/Customer?phone=" + url.QueryEscape(phone)
	if err := c.get(ctx, path, &profiles); err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("db", c.db)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
