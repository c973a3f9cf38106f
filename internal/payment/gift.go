package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/secure"
)

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// GiftClient talks to the stored-value host. Card tokens never travel in the
// clear: each request carries the AES-encrypted token.
type GiftClient struct {
	http         *http.Client
	baseURL      string
	auth         string
	key          []byte
	franchiseeID string
}

func NewGiftClient(baseURL, auth string, key []byte, franchiseeID string) *GiftClient {
	return &GiftClient{
		http:         &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		auth:         auth,
		key:          key,
		franchiseeID: franchiseeID,
	}
}

var _ GiftCards = (*GiftClient)(nil)

type giftBalanceResponse struct {
	Status     bool            `json:"status"`
	StatusCode json.Number     `json:"statuscode"`
	Balance    decimal.Decimal `json:"balance"`
}

// CheckBalance asks the host for the card's remaining balance.
func (c *GiftClient) CheckBalance(ctx context.Context, token string) (*GiftCardBalance, error) {
	encrypted, err := secure.EncryptGiftToken(c.key, token)
	if err != nil {
		return nil, fmt.Errorf("encrypt gift token: %w", err)
	}

	var out giftBalanceResponse
	if err := c.post(ctx, "/Transaction/balancecheck", map[string]any{"encrypted": encrypted}, &out); err != nil {
		return nil, err
	}
	return &GiftCardBalance{
		OK:      out.Status,
		Code:    out.StatusCode.String(),
		Balance: out.Balance,
	}, nil
}

type giftRedeemResponse struct {
	Status      bool            `json:"status"`
	StatusCode  json.Number     `json:"statuscode"`
	HostRef     string          `json:"HostRef"`
	Balance     decimal.Decimal `json:"balance"`
	NewBalance  decimal.Decimal `json:"newBalance"`
	Description string          `json:"description"`
}

// Redeem draws amount from the card. AcceptPartialAmount stays on for host
// compatibility; the kiosk only ever redeems when the checked balance covers
// the full total, so a partial approval does not occur in practice.
func (c *GiftClient) Redeem(ctx context.Context, token string, amount decimal.Decimal) (*GiftCardRedeem, error) {
	encrypted, err := secure.EncryptGiftToken(c.key, token)
	if err != nil {
		return nil, fmt.Errorf("encrypt gift token: %w", err)
	}

	body := map[string]any{
		"encrypted":           encrypted,
		"cardToken":           "",
		"amount":              amount,
		"franchiseeId":        c.franchiseeGUID(),
		"posRef":              "PosP",
		"acceptPartialAmount": true,
	}
	var out giftRedeemResponse
	if err := c.post(ctx, "/Transaction/radeem", body, &out); err != nil {
		return nil, err
	}
	return &GiftCardRedeem{
		OK:          out.Status,
		Code:        out.StatusCode.String(),
		HostRef:     out.HostRef,
		NewBalance:  out.NewBalance,
		Description: out.Description,
	}, nil
}

// franchiseeGUID pads a bare store id into the GUID shape the host expects.
func (c *GiftClient) franchiseeGUID() string {
	if guidPattern.MatchString(c.franchiseeID) {
		return c.franchiseeID
	}
	id := c.franchiseeID
	if len(id) < 12 {
		id = strings.Repeat("0", 12-len(id)) + id
	}
	return "00000000-0000-0000-0000-" + id
}

func (c *GiftClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gift card host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gift card host %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
