package fulfillment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-tote-store/models"
	"go-tote-store/pricing"
	"go-tote-store/repository"
)

// Notifier sends the order confirmation email.
type Notifier interface {
	SendOrderConfirmationEmail(order models.Order) error
}

// RecordingPlacer submits through the print shop at most once per payment,
// stores the placed order and emails the customer.
type RecordingPlacer struct {
	shop     Placer
	orders   repository.OrderStore
	keys     repository.IdempotencyStore
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewRecordingPlacer(shop Placer, orders repository.OrderStore, keys repository.IdempotencyStore, notifier Notifier, log *zap.Logger) *RecordingPlacer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordingPlacer{
		shop:     shop,
		orders:   orders,
		keys:     keys,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *RecordingPlacer) Submit(ctx context.Context, req Request) (Result, error) {
	if req.IdempotencyKey == "" {
		return Result{}, errors.New("order submission needs an idempotency key")
	}

	existing, fresh, err := p.keys.Begin(ctx, req.IdempotencyKey)
	if err != nil {
		return Result{}, err
	}
	if !fresh {
		p.log.Info("order already placed for payment", zap.String("key", req.IdempotencyKey), zap.String("order_id", existing))
		order, err := p.orders.FindByID(ctx, existing)
		if err != nil {
			return Result{Succeeded: true, OrderID: existing}, nil
		}
		return Result{Succeeded: true, OrderID: existing, EstimatedDelivery: order.EstimatedDelivery}, nil
	}

	res, err := p.shop.Submit(ctx, req)
	if err != nil || !res.Succeeded {
		p.release(req.IdempotencyKey)
		return res, err
	}

	order := p.record(req, res)
	if err := p.orders.Insert(ctx, order); err != nil {
		// The print shop has the order; keep the key so a retry does not
		// print it twice.
		p.log.Error("order placed but not recorded", zap.String("order_id", res.OrderID), zap.Error(err))
	}
	if err := p.keys.Complete(ctx, req.IdempotencyKey, res.OrderID); err != nil {
		p.log.Error("could not record idempotency key", zap.String("order_id", res.OrderID), zap.Error(err))
	}

	if p.notifier != nil && order.Email != "" {
		go func(order models.Order) {
			if err := p.notifier.SendOrderConfirmationEmail(order); err != nil {
				p.log.Warn("failed to send order confirmation", zap.String("order_id", order.ID), zap.Error(err))
			}
		}(order)
	}
	return res, nil
}

func (p *RecordingPlacer) release(key string) {
	// the request context may already be done after a timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.keys.Release(ctx, key); err != nil {
		p.log.Error("could not release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (p *RecordingPlacer) record(req Request, res Result) models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			VariantID:       line.VariantID,
			Name:            line.Name,
			DesignReference: line.DesignReference,
			DesignPrompt:    line.DesignPrompt,
			Quantity:        line.Quantity,
			UnitPriceCents:  pricing.MinorUnits(line.UnitPrice),
		})
	}
	now := p.now()
	email := req.ShippingAddress.Email
	if email == "" && req.Customer != nil {
		email = req.Customer.Email
	}
	return models.Order{
		ID:                res.OrderID,
		OwnerID:           req.Customer.OwnerRef(),
		Email:             email,
		Items:             items,
		SubtotalCents:     pricing.MinorUnits(req.Quote.Subtotal),
		ShippingCents:     pricing.MinorUnits(req.Quote.Shipping),
		TaxCents:          pricing.MinorUnits(req.Quote.Tax),
		TotalCents:        pricing.MinorUnits(req.Quote.Total),
		Currency:          req.Currency,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    req.BillingAddress,
		ShippingMethod:    req.ShippingMethod,
		Payment:           req.Payment,
		Status:            models.OrderProcessing,
		EstimatedDelivery: res.EstimatedDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
