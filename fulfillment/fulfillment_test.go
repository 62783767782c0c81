package fulfillment

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tote-store/models"
	"go-tote-store/pricing"
	"go-tote-store/repository"
)

type stubShop struct {
	mu    sync.Mutex
	calls int
	res   Result
	err   error
}

func (s *stubShop) Submit(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.res, s.err
}

type recordingNotifier struct {
	sent chan models.Order
}

func (n *recordingNotifier) SendOrderConfirmationEmail(order models.Order) error {
	n.sent <- order
	return nil
}

func sampleRequest(key string) Request {
	return Request{
		IdempotencyKey: key,
		Items: []Line{{
			ProductID:       "tote-bag-standard",
			VariantID:       "tote-bag-standard-natural",
			Name:            "Custom Tote Bag",
			DesignReference: "https://picsum.photos/seed/owl/400",
			Quantity:        1,
			UnitPrice:       decimal.RequireFromString("34.99"),
		}},
		ShippingAddress: models.Address{Name: "Ada", Email: "ada@example.com", Street: "1 Loop", City: "Austin", Region: "TX", PostalCode: "73301", Country: "US"},
		Quote: pricing.NewQuote(decimal.RequireFromString("34.99"), decimal.RequireFromString("5.99"), decimal.RequireFromString("0.07")),
		Currency: "usd",
	}
}

func TestPrintShopSubmit(t *testing.T) {
	shop := NewPrintShop(0, nil)

	res, err := shop.Submit(context.Background(), sampleRequest("txn_1"))
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{5}$`), res.OrderID)
	assert.Equal(t, "in 5-7 business days", res.EstimatedDelivery)
}

func TestPrintShopRejectsMissingDesign(t *testing.T) {
	shop := NewPrintShop(0, nil)
	req := sampleRequest("txn_1")
	req.Items[0].DesignReference = ""

	res, err := shop.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)

	res, err = shop.Submit(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
}

func TestPrintShopStatusTracking(t *testing.T) {
	shop := NewPrintShop(0, nil)
	for i := 0; i < 20; i++ {
		st, err := shop.Status(context.Background(), "ORD-12345")
		require.NoError(t, err)
		shipped := st.Status == models.OrderShipped || st.Status == models.OrderDelivered
		assert.Equal(t, shipped, st.TrackingNumber != nil)
	}
}

func TestRecordingPlacerStoresOrder(t *testing.T) {
	shop := &stubShop{res: Result{Succeeded: true, OrderID: "ORD-11111", EstimatedDelivery: "in 5-7 business days"}}
	orders := repository.NewMemoryOrderStore()
	notifier := &recordingNotifier{sent: make(chan models.Order, 1)}
	placer := NewRecordingPlacer(shop, orders, repository.NewMemoryIdempotencyStore(), notifier, nil)

	req := sampleRequest("txn_1")
	req.Customer = &models.Customer{UserID: "u1", Email: "ada@example.com"}
	res, err := placer.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORD-11111", res.OrderID)

	stored, err := orders.FindByID(context.Background(), "ORD-11111")
	require.NoError(t, err)
	require.NotNil(t, stored.OwnerID)
	assert.Equal(t, "u1", *stored.OwnerID)
	assert.Equal(t, int64(4343), stored.TotalCents)
	assert.Equal(t, int64(3499), stored.Items[0].UnitPriceCents)
	assert.Equal(t, models.OrderProcessing, stored.Status)

	select {
	case sent := <-notifier.sent:
		assert.Equal(t, "ORD-11111", sent.ID)
	case <-time.After(time.Second):
		t.Fatal("confirmation email not sent")
	}
}

func TestRecordingPlacerGuestOrderHasNoOwner(t *testing.T) {
	shop := &stubShop{res: Result{Succeeded: true, OrderID: "ORD-22222"}}
	orders := repository.NewMemoryOrderStore()
	placer := NewRecordingPlacer(shop, orders, repository.NewMemoryIdempotencyStore(), nil, nil)

	_, err := placer.Submit(context.Background(), sampleRequest("txn_guest"))
	require.NoError(t, err)

	stored, err := orders.FindByID(context.Background(), "ORD-22222")
	require.NoError(t, err)
	assert.True(t, stored.IsGuest())
}

func TestRecordingPlacerSubmitsOncePerKey(t *testing.T) {
	shop := &stubShop{res: Result{Succeeded: true, OrderID: "ORD-33333"}}
	placer := NewRecordingPlacer(shop, repository.NewMemoryOrderStore(), repository.NewMemoryIdempotencyStore(), nil, nil)

	first, err := placer.Submit(context.Background(), sampleRequest("txn_1"))
	require.NoError(t, err)
	second, err := placer.Submit(context.Background(), sampleRequest("txn_1"))
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, shop.calls)
}

func TestRecordingPlacerReleasesKeyOnFailure(t *testing.T) {
	shop := &stubShop{err: errors.New("print shop unavailable")}
	placer := NewRecordingPlacer(shop, repository.NewMemoryOrderStore(), repository.NewMemoryIdempotencyStore(), nil, nil)

	_, err := placer.Submit(context.Background(), sampleRequest("txn_1"))
	require.Error(t, err)

	shop.err = nil
	shop.res = Result{Succeeded: true, OrderID: "ORD-44444"}
	res, err := placer.Submit(context.Background(), sampleRequest("txn_1"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-44444", res.OrderID)
	assert.Equal(t, 2, shop.calls)
}

func TestRecordingPlacerReleasesKeyOnRejection(t *testing.T) {
	shop := &stubShop{res: Result{Succeeded: false, FailureReason: "out of ink"}}
	keys := repository.NewMemoryIdempotencyStore()
	placer := NewRecordingPlacer(shop, repository.NewMemoryOrderStore(), keys, nil, nil)

	res, err := placer.Submit(context.Background(), sampleRequest("txn_1"))
	require.NoError(t, err)
	assert.False(t, res.Succeeded)

	_, fresh, err := keys.Begin(context.Background(), "txn_1")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestRecordingPlacerNeedsKey(t *testing.T) {
	placer := NewRecordingPlacer(&stubShop{}, repository.NewMemoryOrderStore(), repository.NewMemoryIdempotencyStore(), nil, nil)
	_, err := placer.Submit(context.Background(), sampleRequest(""))
	assert.Error(t, err)
}
