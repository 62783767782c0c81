// Package payment wraps the card and wallet payment provider.
package payment

import (
	"context"

	"go-tote-store/models"
)

// Context is a created payment intent that can be confirmed.
type Context struct {
	Token       string `json:"token"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// Confirmation is the outcome of confirming a payment Context. A wallet
// payment (Apple Pay / Google Pay) may carry the address the wallet holds.
type Confirmation struct {
	Succeeded     bool            `json:"succeeded"`
	FailureReason string          `json:"failure_reason,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	WalletAddress *models.Address `json:"wallet_address,omitempty"`
}

// Gateway is the payment provider boundary.
type Gateway interface {
	Initiate(ctx context.Context, amountMinor int64, currency string) (Context, error)
	Confirm(ctx context.Context, pc Context) (Confirmation, error)
}
