// Package cart keeps the line items of a browsing session.
package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-tote-store/errs"
	"go-tote-store/models"
)

// Observer is told the new total item count whenever it changes. Counts
// arrive in mutation order; an observer must not mutate the ledger.
type Observer func(count int)

// Ledger is an ordered collection of line items keyed by id.
// It is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	items     []models.LineItem
	observers map[int]Observer
	nextObs   int
	seq       uint64

	// deliverMu orders observer calls; delivered is the last seq handed out.
	deliverMu sync.Mutex
	delivered uint64
}

func NewLedger() *Ledger {
	return &Ledger{observers: make(map[int]Observer)}
}

// AddItem appends item, or sums its quantity into an existing entry with the
// same id. An empty id is assigned a fresh one. The stored item is returned.
func (l *Ledger) AddItem(item models.LineItem) (models.LineItem, error) {
	if item.Quantity <= 0 {
		return models.LineItem{}, errs.New(errs.InvalidQuantity, "Quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return models.LineItem{}, errs.New(errs.InvalidPrice, "Price cannot be negative")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	l.mu.Lock()
	before := l.countLocked()
	stored := item
	if i := l.indexLocked(item.ID); i >= 0 {
		l.items[i].Quantity += item.Quantity
		stored = l.items[i]
	} else {
		l.items = append(l.items, item)
	}
	after := l.countLocked()
	seq := l.bumpLocked(before, after)
	l.mu.Unlock()

	l.notify(seq, after)
	return stored, nil
}

// RemoveItem drops the entry with id. Absent ids are ignored.
func (l *Ledger) RemoveItem(id string) bool {
	l.mu.Lock()
	before := l.countLocked()
	i := l.indexLocked(id)
	if i >= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	}
	after := l.countLocked()
	seq := l.bumpLocked(before, after)
	l.mu.Unlock()

	l.notify(seq, after)
	return i >= 0
}

// ChangeQuantity adjusts the quantity of id by delta. A result below one
// removes the entry. It reports whether the entry still exists afterwards.
func (l *Ledger) ChangeQuantity(id string, delta int) bool {
	l.mu.Lock()
	before := l.countLocked()
	i := l.indexLocked(id)
	exists := false
	if i >= 0 {
		if q := l.items[i].Quantity + delta; q < 1 {
			l.items = append(l.items[:i], l.items[i+1:]...)
		} else {
			l.items[i].Quantity = q
			exists = true
		}
	}
	after := l.countLocked()
	seq := l.bumpLocked(before, after)
	l.mu.Unlock()

	l.notify(seq, after)
	return exists
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	seq := l.bumpLocked(l.countLocked(), 0)
	l.items = nil
	l.mu.Unlock()

	l.notify(seq, 0)
}

// RemoveLines takes back the quantities of lines from the ledger, matched by
// id. An entry left below one is dropped; anything added since the lines were
// read stays.
func (l *Ledger) RemoveLines(lines []models.LineItem) {
	l.mu.Lock()
	before := l.countLocked()
	for _, line := range lines {
		i := l.indexLocked(line.ID)
		if i < 0 {
			continue
		}
		if q := l.items[i].Quantity - line.Quantity; q < 1 {
			l.items = append(l.items[:i], l.items[i+1:]...)
		} else {
			l.items[i].Quantity = q
		}
	}
	after := l.countLocked()
	seq := l.bumpLocked(before, after)
	l.mu.Unlock()

	l.notify(seq, after)
}

// Items returns a copy of the current line items in insertion order.
func (l *Ledger) Items() []models.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Item(id string) (models.LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	return models.LineItem{}, false
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// TotalPrice sums unit price times quantity over all items.
func (l *Ledger) TotalPrice() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, item := range l.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalItemCount sums the quantities of all items.
func (l *Ledger) TotalItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked()
}

// Subscribe registers fn for item count changes. The returned func removes it.
func (l *Ledger) Subscribe(fn Observer) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.observers, id)
			l.mu.Unlock()
		})
	}
}

func (l *Ledger) indexLocked(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) countLocked() int {
	n := 0
	for _, item := range l.items {
		n += item.Quantity
	}
	return n
}

// bumpLocked numbers a count change. Zero means nothing changed.
func (l *Ledger) bumpLocked(before, after int) uint64 {
	if before == after {
		return 0
	}
	l.seq++
	return l.seq
}

// notify runs observers outside the ledger lock so they may read it. A
// change that lost the race to a newer one is not delivered, so observers
// never end on a stale count.
func (l *Ledger) notify(seq uint64, count int) {
	if seq == 0 {
		return
	}
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()
	if seq <= l.delivered {
		return
	}
	l.delivered = seq

	l.mu.Lock()
	obs := make([]Observer, 0, len(l.observers))
	for _, fn := range l.observers {
		obs = append(obs, fn)
	}
	l.mu.Unlock()

	for _, fn := range obs {
		fn(count)
	}
}
