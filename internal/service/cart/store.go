package cart

import (
	"math"
	"strings"
	"sync"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Item is the product snapshot passed to AddItem. Quantity is supplied
// separately so a merge never overwrites the stored snapshot.
type Item struct {
	ID    string
	Name  string
	Image string
	Price decimal.Decimal
	Size  string
	Color string
}

// Snapshot is a point-in-time copy of a cart with its derived totals.
type Snapshot struct {
	Items      []domain.LineItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

// Store holds one shopper's line items. Mutations are serialized and applied
// in arrival order. Totals are derived from the items on every read.
//
// Observers registered with Subscribe run synchronously after each change,
// while the store is locked, and must not call back into the store.
type Store struct {
	mu        sync.Mutex
	items     []domain.LineItem
	observers map[int]func(Snapshot)
	nextObs   int
}

// NewStore returns a store seeded with items. Lines with a non-positive
// quantity or a duplicate id are dropped.
func NewStore(items ...domain.LineItem) *Store {
	s := &Store{observers: make(map[int]func(Snapshot))}
	for _, it := range items {
		if it.Quantity < 1 || strings.TrimSpace(it.ID) == "" || s.indexOf(it.ID) >= 0 {
			continue
		}
		s.items = append(s.items, it)
	}
	return s
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice is the sum of price * quantity.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// AddItem merges quantity into the line with the same id, or appends a new
// line. A quantity below 1, an empty id or a negative price is ignored.
func (s *Store) AddItem(item Item, quantity int) {
	if quantity < 1 || strings.TrimSpace(item.ID) == "" || item.Price.IsNegative() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity = addQuantity(s.items[i].Quantity, quantity)
	} else {
		s.items = append(s.items, domain.LineItem{
			ID:       item.ID,
			Name:     item.Name,
			Image:    item.Image,
			Price:    item.Price,
			Quantity: quantity,
			Size:     item.Size,
			Color:    item.Color,
		})
	}
	s.notify()
}

// RemoveItem deletes the line with id. Absent ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remove(id) {
		s.notify()
	}
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		if s.remove(id) {
			s.notify()
		}
		return
	}
	i := s.indexOf(id)
	if i < 0 || s.items[i].Quantity == quantity {
		return
	}
	s.items[i].Quantity = quantity
	s.notify()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.notify()
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *Store) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Items:      s.copyItems(),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
	}
}

func (s *Store) copyItems() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// addQuantity saturates at math.MaxInt instead of wrapping negative.
func addQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func totalItems(items []domain.LineItem) int {
	n := 0
	for _, it := range items {
		n = addQuantity(n, it.Quantity)
	}
	return n
}

func totalPrice(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
