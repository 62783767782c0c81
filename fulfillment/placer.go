// Package fulfillment submits paid orders to the print shop and records them.
package fulfillment

import (
	"context"

	"github.com/shopspring/decimal"

	"go-tote-store/models"
	"go-tote-store/pricing"
)

// Line is one product to print.
type Line struct {
	ProductID       string          `json:"product_id"`
	VariantID       string          `json:"variant_id"`
	Name            string          `json:"name"`
	DesignReference string          `json:"design_reference"`
	DesignPrompt    string          `json:"design_prompt"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// Request is an order for a confirmed payment. IdempotencyKey identifies
// the payment so the same charge never produces two orders.
type Request struct {
	IdempotencyKey  string
	Customer        *models.Customer
	Items           []Line
	ShippingAddress models.Address
	BillingAddress  models.Address
	ShippingMethod  string
	Quote           pricing.Quote
	Currency        string
	Payment         models.PaymentReceipt
}

// Result of a submission. Succeeded=false with a nil error is an explicit
// rejection by the print shop.
type Result struct {
	Succeeded         bool   `json:"succeeded"`
	OrderID           string `json:"order_id,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
	FailureReason     string `json:"failure_reason,omitempty"`
}

// Placer is the order placement boundary.
type Placer interface {
	Submit(ctx context.Context, req Request) (Result, error)
}
