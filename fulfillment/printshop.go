package fulfillment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-tote-store/models"
)

// Status is the print shop's view of an order.
type Status struct {
	OrderID        string    `json:"order_id"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
	TrackingNumber *string   `json:"tracking_number"`
	TrackingURL    *string   `json:"tracking_url"`
}

// PrintShop is a stand-in for a print-on-demand provider.
type PrintShop struct {
	Delay time.Duration
	log   *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	orders map[string]Request
}

func NewPrintShop(delay time.Duration, log *zap.Logger) *PrintShop {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrintShop{
		Delay:  delay,
		log:    log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		orders: make(map[string]Request),
	}
}

func (p *PrintShop) Submit(ctx context.Context, req Request) (Result, error) {
	if len(req.Items) == 0 {
		return Result{Succeeded: false, FailureReason: "order has no items"}, nil
	}
	for _, line := range req.Items {
		if line.DesignReference == "" {
			return Result{Succeeded: false, FailureReason: "every item needs a design"}, nil
		}
	}
	if err := p.wait(ctx); err != nil {
		return Result{}, err
	}

	p.mu.Lock()
	orderID := fmt.Sprintf("ORD-%d", 10000+p.rng.Intn(90000))
	for _, taken := p.orders[orderID]; taken; _, taken = p.orders[orderID] {
		orderID = fmt.Sprintf("ORD-%d", 10000+p.rng.Intn(90000))
	}
	p.orders[orderID] = req
	p.mu.Unlock()

	p.log.Info("print order submitted",
		zap.String("order_id", orderID),
		zap.Int("lines", len(req.Items)),
		zap.String("shipping_method", req.ShippingMethod),
	)
	return Result{
		Succeeded:         true,
		OrderID:           orderID,
		EstimatedDelivery: estimatedDelivery(req.ShippingMethod),
	}, nil
}

// Status reports where an order is in production. The mock picks a status
// at random; shipped and delivered orders carry tracking details.
func (p *PrintShop) Status(ctx context.Context, orderID string) (Status, error) {
	if err := p.wait(ctx); err != nil {
		return Status{}, err
	}
	statuses := []string{models.OrderProcessing, models.OrderPrinting, models.OrderShipped, models.OrderDelivered}

	p.mu.Lock()
	status := statuses[p.rng.Intn(len(statuses))]
	p.mu.Unlock()

	st := Status{OrderID: orderID, Status: status, LastUpdated: time.Now().UTC()}
	if status == models.OrderShipped || status == models.OrderDelivered {
		number, url := "TRK123456789", "https://example.com/track"
		st.TrackingNumber = &number
		st.TrackingURL = &url
	}
	return st, nil
}

func (p *PrintShop) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func estimatedDelivery(method string) string {
	switch method {
	case "express":
		return "in 2-3 business days"
	default:
		return "in 5-7 business days"
	}
}
