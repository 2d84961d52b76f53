package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Listener is called synchronously after every mutation with the new contents.
type Listener func(items []Item)

// Store is one cart persisted under a single key.
type Store struct {
	storage Storage
	key     string

	mu        sync.Mutex // serializes read-modify-write on key
	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func Open(storage Storage, key string) *Store {
	return &Store{storage: storage, key: key, listeners: make(map[int]Listener)}
}

func (s *Store) Key() string { return s.key }

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// Items returns the cart contents. A missing or unreadable value is an empty cart.
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("cart read: %w", err)
	}
	if !ok {
		return []Item{}, nil
	}
	return decode(raw), nil
}

// decode accepts a bare list or {"cart": [...]}.
func decode(raw []byte) []Item {
	var list []Item
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return []Item{}
		}
		return list
	}
	var wrapped struct {
		Cart []Item `json:"cart"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Cart != nil {
		return wrapped.Cart
	}
	return []Item{}
}

// Add merges item into the line with the same (id, size), or appends it.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.Qty < MinQuantity {
		item.Qty = MinQuantity
	}
	return s.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].Matches(item.ID, item.Size) {
				items[i].Qty = ClampQuantity(items[i].Qty + item.Qty)
				return items
			}
		}
		item.Qty = ClampQuantity(item.Qty)
		return append(items, item)
	})
}

// Remove drops every line keyed by (id, size).
func (s *Store) Remove(ctx context.Context, id string, size *float64) error {
	return s.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if !it.Matches(id, size) {
				out = append(out, it)
			}
		}
		return out
	})
}

// UpdateQuantity sets the line's qty to max(1, qty). Callers bound the upper
// end with ClampQuantity.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int, size *float64) error {
	if qty < MinQuantity {
		qty = MinQuantity
	}
	return s.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].Matches(id, size) {
				items[i].Qty = qty
			}
		}
		return items
	})
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.storage.Delete(ctx, s.key)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cart clear: %w", err)
	}
	s.notify([]Item{})
	return nil
}

func (s *Store) Total(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return TotalOf(items), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	return CountOf(items), nil
}

func (s *Store) mutate(ctx context.Context, fn func([]Item) []Item) error {
	s.mu.Lock()
	items, err := s.Items(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	items = fn(items)
	raw, err := json.Marshal(items)
	if err == nil {
		err = s.storage.Set(ctx, s.key, raw)
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cart write: %w", err)
	}
	s.notify(items)
	return nil
}

func (s *Store) notify(items []Item) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	for _, l := range ls {
		snapshot := append([]Item(nil), items...)
		l(snapshot)
	}
}
