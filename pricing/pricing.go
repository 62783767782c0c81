// Package pricing computes order totals in decimal currency.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Quote is the price breakdown shown at checkout.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// NewQuote prices a subtotal with shipping and a tax rate. Tax is charged on
// the subtotal only and rounded to cents.
func NewQuote(subtotal, shipping, taxRate decimal.Decimal) Quote {
	tax := subtotal.Mul(taxRate).Round(2)
	return Quote{
		Subtotal: subtotal.Round(2),
		Shipping: shipping.Round(2),
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}

// MinorUnits converts an amount to cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// FromMinorUnits converts cents back to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
