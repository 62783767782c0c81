package models

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a session's cart
type LineItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	ProductID      string          `json:"product_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	ImageReference string          `json:"image_reference"`
	DesignPrompt   string          `json:"design_prompt"`
	VariantID      string          `json:"variant_id,omitempty"`
	VariantName    string          `json:"variant_name,omitempty"`
}

// Subtotal is unit price times quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
