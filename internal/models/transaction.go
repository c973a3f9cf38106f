package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction item type tags.
const (
	TransItemTypeItem     = "ITEM"
	TransItemTypeModifier = "MODIFIER"
)

// TransTypeSale is the only transaction type the kiosk produces.
const TransTypeSale = "SALE"

// OrderTypeTakeAway is the fixed order type for kiosk orders.
const OrderTypeTakeAway = "Take Away"

// TransactionRecord is the immutable snapshot frozen at submission time:
// totals recomputed at that instant, a flattened line-item list, payment
// metadata, and customer linkage. After creation nothing changes except the
// Uploaded flag.
type TransactionRecord struct {
	InvoiceID int64  `json:"invoiceId"`
	ShortCode string `json:"invoiceIdShortCode"`
	UniqueID  string `json:"invoiceUniqueId"`
	TransType string `json:"transType"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax1"`
	GrandTotal decimal.Decimal `json:"grandTotal"`

	SaleTime time.Time `json:"saleDateTime"`

	CashAmount decimal.Decimal `json:"cashAmount"`
	CardAmount decimal.Decimal `json:"cardAmount"`
	TipAmount  decimal.Decimal `json:"tipAmount"`

	// Payment metadata, populated from the terminal or gift-card result.
	PaidBy          string `json:"paidby"`
	CardNumber      string `json:"cardNumber,omitempty"`
	CardType        string `json:"cardType,omitempty"`
	CardHolder      string `json:"cardHolder,omitempty"`
	EntryMethod     string `json:"entryMethod,omitempty"`
	AccountType     string `json:"accountType,omitempty"`
	RetRef          string `json:"retref,omitempty"`
	HostRefNum      string `json:"hostRefNum,omitempty"`
	DeviceOrgRefNum string `json:"deviceOrgRefNum,omitempty"`
	GiftCardNumber  string `json:"giftCardNumber,omitempty"`

	// Customer linkage when a loyalty member is identified.
	CustomerID   string `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	Phone        string `json:"phoneNo,omitempty"`

	StationID string `json:"stationId"`
	CashierID string `json:"cashierId"`
	OrderType string `json:"orderType"`

	Uploaded bool `json:"isUploaded"`

	Items []TransItem `json:"transitems"`
}

// TransItem is one flattened transaction line. Each line carries its own
// captured price, quantity and tax: later catalog changes never retroactively
// affect a submitted order.
type TransItem struct {
	Key         string          `json:"idkey"`
	ItemID      string          `json:"itemId"`
	Name        string          `json:"itemName"`
	Type        string          `json:"itemType"`
	Price       decimal.Decimal `json:"itemPrice"`
	Quantity    int             `json:"qty"`
	Tax         decimal.Decimal `json:"tax1"`
	Amount      decimal.Decimal `json:"amount"`
	ActualPrice decimal.Decimal `json:"actualPrice"`
	TaxStatus   string          `json:"tax1Status"`
	OrderIndex  int             `json:"orderId"`
	SaleTime    time.Time       `json:"saleDateTime"`
}

// ShortCodeFor derives the customer-facing order code from an invoice id:
// "K" plus the last four digits.
func ShortCodeFor(invoiceID int64) string {
	s := fmt.Sprintf("%d", invoiceID)
	if len(s) > 4 {
		s = s[len(s)-4:]
	}
	return "K" + s
}
