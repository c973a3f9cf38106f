package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslite/kiosk/internal/kiosk"
	"github.com/poslite/kiosk/internal/metrics"
	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/payment"
)

type memQueue struct {
	mu      sync.Mutex
	records []*models.TransactionRecord
	enqErr  error
}

func (q *memQueue) Enqueue(_ context.Context, rec *models.TransactionRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqErr != nil {
		return q.enqErr
	}
	q.records = append(q.records, rec)
	return nil
}

func (q *memQueue) ListQueued(context.Context) ([]*models.TransactionRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*models.TransactionRecord, len(q.records))
	copy(out, q.records)
	return out, nil
}

func (q *memQueue) Dequeue(_ context.Context, invoiceID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, rec := range q.records {
		if rec.InvoiceID == invoiceID {
			q.records = append(q.records[:i], q.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not queued")
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

type memCounter struct {
	next int64
	err  error
}

func (c *memCounter) NextInvoiceID(context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.next++
	return 1000 + c.next, nil
}

type fakeUploader struct {
	mu       sync.Mutex
	errs     []error
	uploaded []int64
}

func (u *fakeUploader) Upload(_ context.Context, rec *models.TransactionRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	i := len(u.uploaded)
	if i < len(u.errs) && u.errs[i] != nil {
		return u.errs[i]
	}
	u.uploaded = append(u.uploaded, rec.InvoiceID)
	return nil
}

func (u *fakeUploader) ids() []int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]int64, len(u.uploaded))
	copy(out, u.uploaded)
	return out
}

type fakePrinter struct {
	receipts   int
	kitchens   int
	receiptErr error
}

func (p *fakePrinter) PrintReceipt(context.Context, *models.TransactionRecord) error {
	p.receipts++
	return p.receiptErr
}

func (p *fakePrinter) PrintKitchenTicket(context.Context, *models.TransactionRecord) error {
	p.kitchens++
	return nil
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func stateWithCart(online bool) kiosk.State {
	burger := models.MenuItem{ID: "burger", Name: "Burger", Price: nd("8.00"), TaxRate: nd("8.25"), TaxStatus: models.TaxStatusTaxable}
	cheese := models.MenuItem{ID: "cheese", Name: "Extra Cheese", Price: nd("0.50"), IsModifier: true}

	s := kiosk.NewState(models.ModeActive)
	s.Online = online
	line := kiosk.NewLine(burger, burger.TaxRate)
	line.Quantity = 2
	line.Modifiers = append(line.Modifiers, kiosk.NewModifierLine(cheese, line.ID))
	s.Cart = []models.CartLine{line}
	s.CustomerName = "Dana"
	return s
}

func cardResult() *payment.Result {
	return &payment.Result{
		Kind:        payment.KindCard,
		Amount:      decimal.RequireFromString("17.86"),
		CardNumber:  "************4242",
		CardType:    "VISA",
		EntryMethod: "CONTACTLESS",
		RetRef:      "HOST01",
	}
}

func TestBuildRecordFreezesTotalsAndLines(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)
	rec := BuildRecord(stateWithCart(true), cardResult(), 1001, now, "KIOSK-01", "KIOSK")

	assert.Equal(t, int64(1001), rec.InvoiceID)
	assert.Equal(t, "K1001", rec.ShortCode)
	assert.NotEmpty(t, rec.UniqueID)
	assert.Equal(t, "SALE", rec.TransType)
	assert.Equal(t, "Take Away", rec.OrderType)
	assert.Equal(t, "Dana", rec.CustomerName)
	assert.False(t, rec.Uploaded)

	// 8.00*2 + 0.50 = 16.50; tax trunc(16.50*8.25%) = 1.36
	assert.Equal(t, "16.50", rec.Subtotal.StringFixed(2))
	assert.Equal(t, "1.36", rec.Tax.StringFixed(2))
	assert.Equal(t, "17.86", rec.GrandTotal.StringFixed(2))

	assert.Equal(t, PaidByCard, rec.PaidBy)
	assert.Equal(t, "************4242", rec.CardNumber)
	assert.Equal(t, "17.86", rec.CardAmount.StringFixed(2))

	require.Len(t, rec.Items, 2)
	item, mod := rec.Items[0], rec.Items[1]
	assert.Equal(t, models.TransItemTypeItem, item.Type)
	assert.Equal(t, 1, item.OrderIndex)
	assert.Equal(t, "1.36", item.Tax.StringFixed(2), "parent line carries the tax")
	assert.Equal(t, models.TransItemTypeModifier, mod.Type)
	assert.Equal(t, 1, mod.OrderIndex, "modifier shares the parent's order index")
	assert.True(t, mod.Tax.IsZero())
	assert.NotEqual(t, item.Key, mod.Key)
}

func TestBuildRecordGiftCard(t *testing.T) {
	pay := &payment.Result{
		Kind:           payment.KindGiftCard,
		Amount:         decimal.RequireFromString("17.86"),
		GiftCardNumber: "************5678",
		HostRefNum:     "GH01",
	}
	rec := BuildRecord(stateWithCart(true), pay, 1002, time.Now(), "KIOSK-01", "KIOSK")

	assert.Equal(t, PaidByGiftCard, rec.PaidBy)
	assert.Equal(t, "************5678", rec.GiftCardNumber)
	assert.True(t, rec.CardAmount.IsZero())
	assert.Empty(t, rec.CardNumber)
}

func TestSubmitOnlineUploadsAndDequeues(t *testing.T) {
	queue := &memQueue{}
	uploader := &fakeUploader{}
	printer := &fakePrinter{}
	svc := NewService(queue, &memCounter{}, uploader, printer, "KIOSK-01", "KIOSK")

	rec, err := svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.NoError(t, err)

	assert.True(t, rec.Uploaded)
	assert.Equal(t, []int64{rec.InvoiceID}, uploader.ids())
	assert.Zero(t, queue.len(), "uploaded record leaves the queue")
	assert.Equal(t, 1, printer.receipts)
	assert.Zero(t, printer.kitchens, "kitchen ticket only prints offline")
}

func TestSubmitOfflineQueuesAndPrintsKitchenTicket(t *testing.T) {
	queue := &memQueue{}
	uploader := &fakeUploader{}
	printer := &fakePrinter{}
	svc := NewService(queue, &memCounter{}, uploader, printer, "KIOSK-01", "KIOSK")

	rec, err := svc.Submit(context.Background(), stateWithCart(false), cardResult())
	require.NoError(t, err)

	assert.False(t, rec.Uploaded)
	assert.Empty(t, uploader.ids(), "no upload attempt while offline")
	assert.Equal(t, 1, queue.len())
	assert.Equal(t, 1, printer.receipts)
	assert.Equal(t, 1, printer.kitchens)
}

func TestSubmitUploadFailureKeepsRecordQueued(t *testing.T) {
	queue := &memQueue{}
	uploader := &fakeUploader{errs: []error{errors.New("502 from server")}}
	svc := NewService(queue, &memCounter{}, uploader, &fakePrinter{}, "KIOSK-01", "KIOSK")

	rec, err := svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.NoError(t, err, "upload failure is not a submission failure")
	assert.False(t, rec.Uploaded)
	assert.Equal(t, 1, queue.len())
}

func TestSubmitPrinterFailureDoesNotLoseOrder(t *testing.T) {
	queue := &memQueue{}
	printer := &fakePrinter{receiptErr: errors.New("printer offline")}
	svc := NewService(queue, &memCounter{}, &fakeUploader{}, printer, "KIOSK-01", "KIOSK")

	rec, err := svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.NoError(t, err)
	assert.True(t, rec.Uploaded)
}

func TestSubmitDurabilityFailureIsFatal(t *testing.T) {
	svc := NewService(&memQueue{enqErr: errors.New("disk full")}, &memCounter{}, &fakeUploader{}, &fakePrinter{}, "KIOSK-01", "KIOSK")

	_, err := svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.Error(t, err)

	svc = NewService(&memQueue{}, &memCounter{err: errors.New("counter lost")}, &fakeUploader{}, &fakePrinter{}, "KIOSK-01", "KIOSK")
	_, err = svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.Error(t, err)
}

func queuedRecord(id int64) *models.TransactionRecord {
	return &models.TransactionRecord{InvoiceID: id, ShortCode: models.ShortCodeFor(id)}
}

func TestDrainUploadsFIFOAndDequeuesByIdentity(t *testing.T) {
	queue := &memQueue{records: []*models.TransactionRecord{
		queuedRecord(1001), queuedRecord(1002), queuedRecord(1003),
	}}
	uploader := &fakeUploader{}
	s := NewSyncer(queue, uploader, time.Minute)

	s.drain(context.Background())

	assert.Equal(t, []int64{1001, 1002, 1003}, uploader.ids())
	assert.Zero(t, queue.len())
}

func TestDrainStopsAtFirstFailure(t *testing.T) {
	queue := &memQueue{records: []*models.TransactionRecord{
		queuedRecord(1001), queuedRecord(1002), queuedRecord(1003),
	}}
	// Oldest record fails; nothing younger may jump the line.
	uploader := &fakeUploader{errs: []error{errors.New("timeout")}}
	s := NewSyncer(queue, uploader, time.Minute)

	s.drain(context.Background())
	assert.Empty(t, uploader.ids())
	assert.Equal(t, 3, queue.len())

	// Next pass succeeds and drains in order.
	uploader.errs = nil
	s.drain(context.Background())
	assert.Equal(t, []int64{1001, 1002, 1003}, uploader.ids())
	assert.Zero(t, queue.len())
}

func TestQueueDepthGaugeOwnedByDrain(t *testing.T) {
	queue := &memQueue{records: []*models.TransactionRecord{
		queuedRecord(2001), queuedRecord(2002),
	}}
	uploader := &fakeUploader{errs: []error{errors.New("timeout")}}
	s := NewSyncer(queue, uploader, time.Minute)

	// A failed pass leaves both records pending.
	s.drain(context.Background())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.QueueDepth))

	// An online submission passes through the queue but never moves the
	// gauge; only drain passes write it.
	svc := NewService(queue, &memCounter{}, &fakeUploader{}, &fakePrinter{}, "KIOSK-01", "KIOSK")
	_, err := svc.Submit(context.Background(), stateWithCart(true), cardResult())
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.QueueDepth))

	uploader.errs = nil
	s.drain(context.Background())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.QueueDepth))
}

func TestSyncerKickTriggersImmediateDrain(t *testing.T) {
	queue := &memQueue{records: []*models.TransactionRecord{queuedRecord(1001)}}
	uploader := &fakeUploader{}
	s := NewSyncer(queue, uploader, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return queue.len() == 0 }, 2*time.Second, 10*time.Millisecond)

	// A later submission lands while the ticker is far away; a kick drains it.
	require.NoError(t, queue.Enqueue(context.Background(), queuedRecord(1002)))
	s.Kick()
	require.Eventually(t, func() bool { return queue.len() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, []int64{1001, 1002}, uploader.ids())
}
