package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/poslite/kiosk/internal/models"
)

// Client uploads transactions to the transaction server. Requests carry the
// tenant database header and basic auth like every other transaction-server
// call.
type Client struct {
	http    *http.Client
	baseURL string
	db      string
	auth    string
}

func NewClient(baseURL, db, auth string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		db:      db,
		auth:    auth,
	}
}

// uploadEnvelope is the transaction-server wire format: header fields plus
// the main record and its flattened lines side by side.
type uploadEnvelope struct {
	Date      string             `json:"date"`
	Time      string             `json:"time"`
	TransMain *transMainJSON     `json:"transmain"`
	Items     []models.TransItem `json:"transitems"`
}

// transMainJSON serializes the record without its embedded line list; the
// envelope carries the lines at the top level.
type transMainJSON struct {
	*models.TransactionRecord
	Items []models.TransItem `json:"transitems,omitempty"`
}

// Upload POSTs one record. Any non-200 response is a failure; the caller
// leaves the record queued.
func (c *Client) Upload(ctx context.Context, rec *models.TransactionRecord) error {
	env := uploadEnvelope{
		Date:      rec.SaleTime.Format("2006-01-02"),
		Time:      rec.SaleTime.Format("15:04:05"),
		TransMain: &transMainJSON{TransactionRecord: rec},
		Items:     rec.Items,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode transaction %d: %w", rec.InvoiceID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Transactions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("db", c.db)
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload transaction %d: %w", rec.InvoiceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload transaction %d: unexpected status %d", rec.InvoiceID, resp.StatusCode)
	}
	return nil
}
