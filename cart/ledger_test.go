package cart

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tote-store/errs"
	"go-tote-store/models"
)

func tote(id string, qty int) models.LineItem {
	return models.LineItem{
		ID:             id,
		Name:           "Custom Tote Bag",
		ProductID:      "tote-bag-standard",
		UnitPrice:      decimal.RequireFromString("34.99"),
		Quantity:       qty,
		ImageReference: "https://picsum.photos/seed/owl/400",
		DesignPrompt:   "owl",
	}
}

func TestAddItemMergesSameID(t *testing.T) {
	l := NewLedger()

	_, err := l.AddItem(tote("a", 2))
	require.NoError(t, err)
	stored, err := l.AddItem(tote("a", 3))
	require.NoError(t, err)

	assert.Equal(t, 5, stored.Quantity)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 5, l.TotalItemCount())
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"c", "a", "b"} {
		_, err := l.AddItem(tote(id, 1))
		require.NoError(t, err)
	}

	items := l.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "b", items[2].ID)
}

func TestAddItemGeneratesID(t *testing.T) {
	l := NewLedger()

	first, err := l.AddItem(tote("", 1))
	require.NoError(t, err)
	second, err := l.AddItem(tote("", 1))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, l.Len())
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	l := NewLedger()

	for _, qty := range []int{0, -1} {
		_, err := l.AddItem(tote("a", qty))
		assert.True(t, errors.Is(err, errs.New(errs.InvalidQuantity, "")))
	}
	assert.Equal(t, 0, l.Len())
}

func TestAddItemRejectsNegativePrice(t *testing.T) {
	l := NewLedger()
	item := tote("a", 1)
	item.UnitPrice = decimal.RequireFromString("-1")

	_, err := l.AddItem(item)
	assert.Equal(t, errs.InvalidPrice, errs.CodeOf(err))
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 1))

	assert.False(t, l.RemoveItem("missing"))
	assert.True(t, l.RemoveItem("a"))
	assert.Equal(t, 0, l.Len())
}

func TestChangeQuantity(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 2))

	assert.True(t, l.ChangeQuantity("a", 1))
	item, _ := l.Item("a")
	assert.Equal(t, 3, item.Quantity)

	assert.True(t, l.ChangeQuantity("a", -2))
	item, _ = l.Item("a")
	assert.Equal(t, 1, item.Quantity)

	assert.False(t, l.ChangeQuantity("missing", 4))
}

func TestChangeQuantityByNegativeQuantityRemoves(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 4))

	assert.False(t, l.ChangeQuantity("a", -4))
	_, ok := l.Item("a")
	assert.False(t, ok)
	assert.Equal(t, 0, l.TotalItemCount())
}

func TestTotalPrice(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 1))
	assert.Equal(t, "34.99", l.TotalPrice().StringFixed(2))

	premium := tote("b", 2)
	premium.UnitPrice = decimal.RequireFromString("44.99")
	_, _ = l.AddItem(premium)
	assert.Equal(t, "124.97", l.TotalPrice().StringFixed(2))
}

func TestClearEmptyLedger(t *testing.T) {
	l := NewLedger()
	l.Clear()
	assert.Equal(t, 0, l.TotalItemCount())
	assert.True(t, l.TotalPrice().IsZero())
}

func TestItemCountMatchesQuantitiesUnderRandomOps(t *testing.T) {
	l := NewLedger()
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			_, _ = l.AddItem(tote(id, rng.Intn(5)-1))
		case 1:
			l.RemoveItem(id)
		case 2:
			l.ChangeQuantity(id, rng.Intn(7)-3)
		}

		sum := 0
		for _, item := range l.Items() {
			require.GreaterOrEqual(t, item.Quantity, 1)
			sum += item.Quantity
		}
		require.Equal(t, sum, l.TotalItemCount())
		require.GreaterOrEqual(t, l.TotalItemCount(), 0)
	}
}

func TestSubscribeSeesCountChanges(t *testing.T) {
	l := NewLedger()
	var seen []int
	unsubscribe := l.Subscribe(func(count int) {
		seen = append(seen, count)
	})

	_, _ = l.AddItem(tote("a", 2))
	l.ChangeQuantity("a", 1)
	l.RemoveItem("missing")
	l.Clear()
	unsubscribe()
	_, _ = l.AddItem(tote("b", 1))

	assert.Equal(t, []int{2, 3, 0}, seen)
}

func TestObserverMayReadLedger(t *testing.T) {
	l := NewLedger()
	var total string
	l.Subscribe(func(int) {
		total = l.TotalPrice().StringFixed(2)
	})

	_, _ = l.AddItem(tote("a", 1))
	assert.Equal(t, "34.99", total)
}

func TestRemoveLinesKeepsLaterAdditions(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 2))
	_, _ = l.AddItem(tote("b", 1))
	ordered := l.Items()

	_, _ = l.AddItem(tote("a", 3))
	_, _ = l.AddItem(tote("c", 1))
	l.RemoveLines(ordered)

	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "c", items[1].ID)
	assert.Equal(t, 4, l.TotalItemCount())
}

func TestRemoveLinesDropsShrunkEntries(t *testing.T) {
	l := NewLedger()
	_, _ = l.AddItem(tote("a", 2))
	ordered := l.Items()

	l.ChangeQuantity("a", -1)
	l.RemoveLines(ordered)
	l.RemoveLines([]models.LineItem{tote("missing", 1)})

	assert.Zero(t, l.Len())
}

func TestObserversEndOnLatestCount(t *testing.T) {
	l := NewLedger()
	var (
		mu   sync.Mutex
		last int
		seen []int
	)
	l.Subscribe(func(count int) {
		mu.Lock()
		last = count
		seen = append(seen, count)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", w)
			for i := 0; i < 200; i++ {
				_, _ = l.AddItem(tote(id, 1))
				if i%3 == 0 {
					l.ChangeQuantity(id, -1)
				}
			}
		}(w)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, l.TotalItemCount(), last)
	assert.NotEmpty(t, seen)
}
