package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-tote-store/cart"
	"go-tote-store/checkout"
	"go-tote-store/design"
	"go-tote-store/fulfillment"
	"go-tote-store/metrics"
	"go-tote-store/payment"
)

const DefaultTTL = 2 * time.Hour

var ErrNoSession = errors.New("session not found")

// Options are shared by every session a Manager starts.
type Options struct {
	Generator      design.Generator
	Gateway        payment.Gateway
	Placer         fulfillment.Placer
	GatewayTimeout time.Duration
	Currency       string
	TaxRate        decimal.Decimal
	TTL            time.Duration
	Log            *zap.Logger
	Metrics        *metrics.Metrics
}

// Manager owns every live Session.
type Manager struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Manager{
		opts:     opts,
		log:      opts.Log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Start creates a fresh session with an empty cart.
func (m *Manager) Start() *Session {
	id := uuid.NewString()
	log := m.log.With(zap.String("session_id", id))

	s := &Session{
		ID:       id,
		Cart:     cart.NewLedger(),
		Design:   design.NewSession(m.opts.Generator, m.opts.GatewayTimeout, log),
		lastSeen: m.now(),
	}
	s.Checkout = checkout.New(s.Cart, m.opts.Gateway, m.opts.Placer, checkout.Config{
		Timeout:  m.opts.GatewayTimeout,
		Currency: m.opts.Currency,
		TaxRate:  m.opts.TaxRate,
		Log:      log,
		Metrics:  m.opts.Metrics,
		Notify:   s.push,
	})
	s.unsubscribe = s.Cart.Subscribe(func(count int) {
		s.mu.Lock()
		s.cartCount = count
		s.mu.Unlock()
	})

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.setGauge(n)
	log.Debug("session started")
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	s.touch(m.now())
	return s, nil
}

// End drops a session. In-flight calls of the session finish, but their
// results are discarded.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Checkout.Reset()
	s.close()
	m.setGauge(n)
	return true
}

// Sweep ends sessions idle for longer than the TTL and reports how many.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.opts.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Checkout.Reset()
		s.close()
	}
	if len(expired) > 0 {
		m.setGauge(n)
		m.log.Info("expired idle sessions", zap.Int("count", len(expired)), zap.Int("remaining", n))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.opts.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) setGauge(n int) {
	if m.opts.Metrics != nil {
		m.opts.Metrics.ActiveSessions.Set(float64(n))
	}
}
