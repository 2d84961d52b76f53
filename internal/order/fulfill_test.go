package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/geezshoe/internal/customer"
	"github.com/MikeMC777/geezshoe/internal/events"
	"github.com/MikeMC777/geezshoe/internal/logging"
	"github.com/MikeMC777/geezshoe/internal/product"
)

// memState is the committed state of the fake store.
type memState struct {
	stock     map[string]int
	active    map[string]bool
	sales     map[string]int
	customers map[string]int
	orders    map[string]bool
}

func (s memState) clone() memState {
	c := memState{
		stock: map[string]int{}, active: map[string]bool{}, sales: map[string]int{},
		customers: map[string]int{}, orders: map[string]bool{},
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.active {
		c.active[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// memFulfillmentStore works on a copy and swaps it in only on success.
type memFulfillmentStore struct {
	state        memState
	failCustomer error
	calls        []string
}

func (m *memFulfillmentStore) WithinTx(_ context.Context, fn func(FulfillmentTx) error) error {
	work := m.state.clone()
	if err := fn(&memTx{s: &work, failCustomer: m.failCustomer, calls: &m.calls}); err != nil {
		return err
	}
	m.state = work
	return nil
}

type memTx struct {
	s            *memState
	failCustomer error
	calls        *[]string
}

func (t *memTx) record(call string) { *t.calls = append(*t.calls, call) }

func (t *memTx) IncrementSales(_ context.Context, id string, qty int) error {
	t.record("sales:" + id)
	t.s.sales[id] += qty
	return nil
}

func (t *memTx) IncrementCustomer(_ context.Context, phone, _ string, items int) error {
	t.record("customer")
	if t.failCustomer != nil {
		return t.failCustomer
	}
	t.s.customers[customer.NormalizePhone(phone)] += items
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	t.record("stock:" + id)
	cur, ok := t.s.stock[id]
	if !ok {
		return 0, product.ErrNotFound
	}
	cur -= qty
	if cur < 0 {
		cur = 0
	}
	t.s.stock[id] = cur
	t.s.active[id] = cur > 0
	return cur, nil
}

func (t *memTx) DeleteOrder(_ context.Context, id string) (bool, error) {
	t.record("delete")
	if !t.s.orders[id] {
		return false, nil
	}
	delete(t.s.orders, id)
	return true, nil
}

func newStore() *memFulfillmentStore {
	return &memFulfillmentStore{state: memState{
		stock:     map[string]int{"p1": 10, "p2": 1},
		active:    map[string]bool{"p1": true, "p2": true},
		sales:     map[string]int{"p1": 4},
		customers: map[string]int{"+251911223344": 5},
		orders:    map[string]bool{"o1": true},
	}}
}

func testOrder(ids []string, qty []int) *Order {
	n := len(ids)
	o := &Order{
		ID: "o1", Name: "Abebe", Phone: "+251 911-223344",
		ProductIDs: ids, Quantities: qty,
		ProductNames: make([]string, n), ProductSizes: make([]string, n),
		UnitPrices: make([]decimal.Decimal, n), TotalPrices: make([]decimal.Decimal, n),
	}
	return o
}

func TestFulfill_UpdatesAggregatesAndRemovesOrder(t *testing.T) {
	store := newStore()
	pub := &recPublisher{}
	f := NewFulfiller(store, pub, logging.Discard())

	rec, err := f.Fulfill(context.Background(), testOrder([]string{"p1", "p1"}, []int{2, 3}))
	require.NoError(t, err)

	assert.Equal(t, 5, rec.ItemsSold)
	assert.Equal(t, 9, store.state.sales["p1"])
	assert.Equal(t, 5, store.state.stock["p1"])
	assert.Equal(t, 10, store.state.customers["+251911223344"], "5 + 2 + 3")
	assert.False(t, store.state.orders["o1"])
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.OrderFulfilled, pub.events[0].Type)
}

func TestFulfill_StockFloorsAtZeroAndDeactivates(t *testing.T) {
	store := newStore()
	f := NewFulfiller(store, events.Nop{}, logging.Discard())

	rec, err := f.Fulfill(context.Background(), testOrder([]string{"p2"}, []int{3}))
	require.NoError(t, err)

	assert.Equal(t, 0, store.state.stock["p2"])
	assert.False(t, store.state.active["p2"])
	assert.Equal(t, 0, rec.Stock["p2"])
	assert.Equal(t, 3, store.state.sales["p2"])
}

func TestFulfill_MissingQuantityCountsAsOne(t *testing.T) {
	store := newStore()
	f := NewFulfiller(store, events.Nop{}, logging.Discard())

	rec, err := f.Fulfill(context.Background(), testOrder([]string{"p1"}, []int{0}))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ItemsSold)
	assert.Equal(t, 9, store.state.stock["p1"])
	assert.Equal(t, 5, store.state.sales["p1"])
}

func TestFulfill_DeletedProductStillCountsAsSold(t *testing.T) {
	store := newStore()
	f := NewFulfiller(store, events.Nop{}, logging.Discard())

	rec, err := f.Fulfill(context.Background(), testOrder([]string{"gone", "p1"}, []int{4, 1}))
	require.NoError(t, err)

	assert.Equal(t, []string{"gone"}, rec.SkippedProducts)
	assert.Equal(t, 4, store.state.sales["gone"])
	assert.NotContains(t, store.state.stock, "gone")
	assert.NotContains(t, rec.Stock, "gone")
	assert.Equal(t, 5, store.state.sales["p1"])
	assert.Equal(t, 9, store.state.stock["p1"])
	assert.Equal(t, 10, store.state.customers["+251911223344"], "5 + 4 + 1")
}

func TestFulfill_StepOrder(t *testing.T) {
	store := newStore()
	f := NewFulfiller(store, events.Nop{}, logging.Discard())

	_, err := f.Fulfill(context.Background(), testOrder([]string{"p1", "p2"}, []int{1, 1}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sales:p1", "sales:p2",
		"customer",
		"stock:p1", "stock:p2",
		"delete",
	}, store.calls)
}

func TestFulfill_FailureCommitsNothing(t *testing.T) {
	store := newStore()
	store.failCustomer = errors.New("customers table locked")
	pub := &recPublisher{}
	f := NewFulfiller(store, pub, logging.Discard())

	_, err := f.Fulfill(context.Background(), testOrder([]string{"p1"}, []int{2}))
	require.ErrorIs(t, err, store.failCustomer)

	assert.Equal(t, 4, store.state.sales["p1"])
	assert.Equal(t, 10, store.state.stock["p1"])
	assert.True(t, store.state.orders["o1"])
	assert.Empty(t, pub.events)
}

func TestFulfill_SecondAttemptIsNotFound(t *testing.T) {
	store := newStore()
	f := NewFulfiller(store, events.Nop{}, logging.Discard())
	o := testOrder([]string{"p1"}, []int{2})

	_, err := f.Fulfill(context.Background(), o)
	require.NoError(t, err)

	_, err = f.Fulfill(context.Background(), o)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 6, store.state.sales["p1"], "second attempt rolled back")
	assert.Equal(t, 8, store.state.stock["p1"])
}

func TestFulfill_RejectsMalformedOrder(t *testing.T) {
	f := NewFulfiller(newStore(), events.Nop{}, logging.Discard())
	o := testOrder([]string{"p1"}, []int{1})
	o.Quantities = nil

	_, err := f.Fulfill(context.Background(), o)
	assert.ErrorIs(t, err, ErrMalformed)
}
