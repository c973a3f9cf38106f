// Package submit finalizes orders: it freezes an immutable transaction
// record, persists it to the offline queue before anything else, prints, and
// uploads when the backend is reachable. A synchronizer drains the queue in
// the background.
package submit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/kiosk"
	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/money"
	"github.com/poslite/kiosk/internal/payment"
)

// Customer-facing payment labels on receipts and uploads.
const (
	PaidByCard     = "Card"
	PaidByGiftCard = "GiftCard"
)

// BuildRecord freezes a transaction record from the session state and an
// approved payment. Totals are recomputed here, at the moment of truth; no
// earlier display value is trusted. The record never changes afterwards
// except for the upload flag.
func BuildRecord(state kiosk.State, pay *payment.Result, invoiceID int64, now time.Time, stationID, cashierID string) *models.TransactionRecord {
	rec := &models.TransactionRecord{
		InvoiceID: invoiceID,
		ShortCode: models.ShortCodeFor(invoiceID),
		UniqueID:  uuid.NewString(),
		TransType: models.TransTypeSale,

		Subtotal:   money.Subtotal(state.Cart),
		Tax:        money.TaxTotal(state.Cart),
		GrandTotal: money.GrandTotal(state.Cart),

		SaleTime: now,

		StationID: stationID,
		CashierID: cashierID,
		OrderType: models.OrderTypeTakeAway,

		CustomerName: state.CustomerName,
	}

	if state.Loyalty != nil {
		rec.CustomerID = state.Loyalty.ID
		rec.Phone = state.Loyalty.Phone
	}

	switch pay.Kind {
	case payment.KindGiftCard:
		rec.PaidBy = PaidByGiftCard
		rec.GiftCardNumber = pay.GiftCardNumber
		rec.HostRefNum = pay.HostRefNum
	default:
		rec.PaidBy = PaidByCard
		rec.CardAmount = pay.Amount
		rec.CardNumber = pay.CardNumber
		rec.CardType = pay.CardType
		rec.CardHolder = pay.CardHolder
		rec.EntryMethod = pay.EntryMethod
		rec.AccountType = pay.AccountType
		rec.RetRef = pay.RetRef
		rec.HostRefNum = pay.HostRefNum
		rec.DeviceOrgRefNum = pay.DeviceOrgRefNum
	}

	rec.Items = flattenItems(state.Cart, now)
	return rec
}

// flattenItems turns the nested cart into the flat line list the backend
// stores. Modifier rows share the parent's order index and carry no tax of
// their own: their amounts are taxed through the parent line.
func flattenItems(cart []models.CartLine, now time.Time) []models.TransItem {
	items := make([]models.TransItem, 0, len(cart))
	for idx, line := range cart {
		price := money.LinePrice(line)
		items = append(items, models.TransItem{
			Key:         uuid.NewString(),
			ItemID:      line.Item.ID,
			Name:        line.Item.Name,
			Type:        models.TransItemTypeItem,
			Price:       price,
			Quantity:    line.Quantity,
			Tax:         money.LineTax(line),
			Amount:      price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			ActualPrice: price,
			TaxStatus:   line.Item.TaxStatus,
			OrderIndex:  idx + 1,
			SaleTime:    now,
		})
		for _, mod := range line.Modifiers {
			modPrice := money.LinePrice(mod)
			items = append(items, models.TransItem{
				Key:         uuid.NewString(),
				ItemID:      mod.Item.ID,
				Name:        mod.Item.Name,
				Type:        models.TransItemTypeModifier,
				Price:       modPrice,
				Quantity:    mod.Quantity,
				Tax:         decimal.Zero,
				Amount:      modPrice.Mul(decimal.NewFromInt(int64(mod.Quantity))),
				ActualPrice: modPrice,
				TaxStatus:   mod.Item.TaxStatus,
				OrderIndex:  idx + 1,
				SaleTime:    now,
			})
		}
	}
	return items
}
