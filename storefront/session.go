// Package storefront bundles the per-visitor state of the shop and manages
// its lifetime.
package storefront

import (
	"sync"
	"time"

	"go-tote-store/cart"
	"go-tote-store/checkout"
	"go-tote-store/design"
	"go-tote-store/models"
)

// Session is one visitor's cart, design and checkout. Each part guards its
// own state, so handlers may use them concurrently.
type Session struct {
	ID       string
	Cart     *cart.Ledger
	Design   *design.Session
	Checkout *checkout.Orchestrator

	unsubscribe func()

	mu        sync.Mutex
	notices   []models.Notice
	cartCount int
	lastSeen  time.Time
}

// Notify queues a notice for the visitor's next response.
func (s *Session) Notify(level, message string) {
	s.mu.Lock()
	s.notices = append(s.notices, models.Notice{Level: level, Message: message})
	s.mu.Unlock()
}

func (s *Session) push(n models.Notice) {
	s.Notify(n.Level, n.Message)
}

// DrainNotices returns the queued notices and empties the queue.
func (s *Session) DrainNotices() []models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// CartCount is the item count last reported by the cart.
func (s *Session) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartCount
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
