package models

// PaymentReceipt records the confirmed charge an order was placed against
type PaymentReceipt struct {
	TransactionID string `bson:"transaction_id" json:"transaction_id"`
	Token         string `bson:"token" json:"token"`
	AmountCents   int64  `bson:"amount_cents" json:"amount_cents"`
	Currency      string `bson:"currency" json:"currency"`
	Wallet        bool   `bson:"wallet" json:"wallet"` // address came from Apple Pay / Google Pay
}
