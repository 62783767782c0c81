package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-tote-store/models"
)

// DemoWalletAddress is what the mock wallet hands back when prefill is on.
var DemoWalletAddress = models.Address{
	Name:       "John Doe",
	Street:     "123 Main St",
	City:       "San Francisco",
	Region:     "CA",
	PostalCode: "94105",
	Country:    "US",
}

// MockGateway approves payments without contacting a provider. An intent is
// charged at most once: confirming it again returns the first confirmation.
type MockGateway struct {
	// Delay simulates provider latency on Confirm.
	Delay time.Duration
	// WalletPrefill makes confirmations carry DemoWalletAddress.
	WalletPrefill bool
	// DeclineAbove declines amounts above this many minor units. Zero disables it.
	DeclineAbove int64

	log *zap.Logger

	mu      sync.Mutex
	intents map[string]Context
	// confirmed holds the successful confirmation of each used intent.
	confirmed map[string]Confirmation
}

func NewMockGateway(log *zap.Logger) *MockGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &MockGateway{log: log, intents: make(map[string]Context), confirmed: make(map[string]Confirmation)}
}

func (g *MockGateway) Initiate(ctx context.Context, amountMinor int64, currency string) (Context, error) {
	if amountMinor <= 0 {
		return Context{}, fmt.Errorf("payment amount must be positive, got %d", amountMinor)
	}
	pc := Context{Token: "pi_" + randomID(12), AmountMinor: amountMinor, Currency: currency}

	g.mu.Lock()
	g.intents[pc.Token] = pc
	g.mu.Unlock()

	g.log.Info("payment intent created", zap.String("token", pc.Token), zap.Int64("amount_minor", amountMinor), zap.String("currency", currency))
	return pc, nil
}

func (g *MockGateway) Confirm(ctx context.Context, pc Context) (Confirmation, error) {
	g.mu.Lock()
	stored, ok := g.intents[pc.Token]
	prev, used := g.confirmed[pc.Token]
	g.mu.Unlock()
	if !ok {
		return Confirmation{}, fmt.Errorf("unknown payment intent %q", pc.Token)
	}
	if used {
		return prev, nil
	}

	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-timer.C:
		}
	}

	if g.DeclineAbove > 0 && stored.AmountMinor > g.DeclineAbove {
		g.log.Info("payment declined", zap.String("token", pc.Token), zap.Int64("amount_minor", stored.AmountMinor))
		return Confirmation{Succeeded: false, FailureReason: "Your card was declined"}, nil
	}

	conf := Confirmation{Succeeded: true, TransactionID: "txn_" + randomID(8)}
	if g.WalletPrefill {
		addr := DemoWalletAddress
		conf.WalletAddress = &addr
	}

	// A concurrent Confirm of the same intent may have finished first.
	g.mu.Lock()
	if prev, used := g.confirmed[pc.Token]; used {
		g.mu.Unlock()
		return prev, nil
	}
	g.confirmed[pc.Token] = conf
	g.mu.Unlock()

	g.log.Info("payment confirmed", zap.String("token", pc.Token), zap.String("transaction_id", conf.TransactionID))
	return conf, nil
}

func randomID(n int) string {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
