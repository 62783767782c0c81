package models

import (
	"time"
)

// Order fulfillment statuses reported by the print shop
const (
	OrderProcessing = "processing"
	OrderPrinting   = "printing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
)

// OrderItem is a persisted line of an order. Money is stored in cents.
type OrderItem struct {
	ProductID       string `bson:"product_id" json:"product_id"`
	VariantID       string `bson:"variant_id" json:"variant_id"`
	Name            string `bson:"name" json:"name"`
	DesignReference string `bson:"design_reference" json:"design_reference"`
	DesignPrompt    string `bson:"design_prompt,omitempty" json:"design_prompt,omitempty"`
	Quantity        int    `bson:"quantity" json:"quantity"`
	UnitPriceCents  int64  `bson:"unit_price_cents" json:"unit_price_cents"`
}

// Order is a placed order. OwnerID is nil for guest checkouts.
type Order struct {
	ID                string         `bson:"_id" json:"id"`
	OwnerID           *string        `bson:"owner_id" json:"owner_id"`
	Email             string         `bson:"email" json:"email"`
	Items             []OrderItem    `bson:"items" json:"items"`
	SubtotalCents     int64          `bson:"subtotal_cents" json:"subtotal_cents"`
	ShippingCents     int64          `bson:"shipping_cents" json:"shipping_cents"`
	TaxCents          int64          `bson:"tax_cents" json:"tax_cents"`
	TotalCents        int64          `bson:"total_cents" json:"total_cents"`
	Currency          string         `bson:"currency" json:"currency"`
	ShippingAddress   Address        `bson:"shipping_address" json:"shipping_address"`
	BillingAddress    Address        `bson:"billing_address" json:"billing_address"`
	ShippingMethod    string         `bson:"shipping_method" json:"shipping_method"`
	Payment           PaymentReceipt `bson:"payment" json:"payment"`
	Status            string         `bson:"status" json:"status"`
	TrackingNumber    string         `bson:"tracking_number,omitempty" json:"tracking_number,omitempty"`
	TrackingURL       string         `bson:"tracking_url,omitempty" json:"tracking_url,omitempty"`
	EstimatedDelivery string         `bson:"estimated_delivery" json:"estimated_delivery"`
	CreatedAt         time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updated_at"`
}

// IsGuest reports whether the order has no owning account
func (o Order) IsGuest() bool {
	return o.OwnerID == nil
}
