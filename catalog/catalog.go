// Package catalog holds the tote bag products the print shop can make.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultProductID = "tote-bag-standard"
	DefaultVariantID = "tote-bag-standard-natural"
)

// FlatShipping is charged when the customer has not picked a shipping method.
var FlatShipping = decimal.RequireFromString("5.99")

// TaxRate applied to the cart subtotal.
var TaxRate = decimal.RequireFromString("0.07")

type Variant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	InStock bool   `json:"in_stock"`
}

type ShippingMethod struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	EstimatedDays string          `json:"estimated_days"`
}

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Variants    []Variant        `json:"variants"`
	Shipping    []ShippingMethod `json:"shipping_methods"`
}

var shippingMethods = []ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Price: decimal.RequireFromString("4.99"), EstimatedDays: "5-7 business days"},
	{ID: "express", Name: "Express Shipping", Price: decimal.RequireFromString("9.99"), EstimatedDays: "2-3 business days"},
}

var products = []Product{
	{
		ID:          "tote-bag-standard",
		Name:        "Standard Tote Bag",
		Description: "Durable 100% organic cotton tote bag",
		Price:       decimal.RequireFromString("34.99"),
		Variants: []Variant{
			{ID: "tote-bag-standard-black", Name: "Black", InStock: true},
			{ID: "tote-bag-standard-natural", Name: "Natural", InStock: true},
		},
		Shipping: shippingMethods,
	},
	{
		ID:          "tote-bag-premium",
		Name:        "Premium Tote Bag",
		Description: "Premium heavyweight cotton tote with reinforced handles",
		Price:       decimal.RequireFromString("44.99"),
		Variants: []Variant{
			{ID: "tote-bag-premium-black", Name: "Black", InStock: true},
			{ID: "tote-bag-premium-navy", Name: "Navy", InStock: false},
		},
		Shipping: shippingMethods,
	},
}

// Products returns every product in catalog order.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Lookup finds a product by id.
func Lookup(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// LookupVariant finds a variant of a product. An empty variant id resolves
// to the product's first variant.
func LookupVariant(productID, variantID string) (Variant, bool) {
	p, ok := Lookup(productID)
	if !ok || len(p.Variants) == 0 {
		return Variant{}, false
	}
	if variantID == "" {
		return p.Variants[0], true
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}

// ShippingRates quotes the shipping methods of a product for a destination
// region. Express shipping to California is a dollar cheaper.
func ShippingRates(productID, region string) []ShippingMethod {
	p, ok := Lookup(productID)
	if !ok {
		return nil
	}
	rates := make([]ShippingMethod, 0, len(p.Shipping))
	for _, m := range p.Shipping {
		if m.ID == "express" && strings.EqualFold(region, "CA") {
			m.Price = m.Price.Sub(decimal.NewFromInt(1))
		}
		rates = append(rates, m)
	}
	return rates
}

// Method finds a shipping method by id for a product and region.
func Method(productID, region, methodID string) (ShippingMethod, bool) {
	for _, m := range ShippingRates(productID, region) {
		if m.ID == methodID {
			return m, true
		}
	}
	return ShippingMethod{}, false
}
