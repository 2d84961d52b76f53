package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/geezshoe/internal/customer"
	"github.com/MikeMC777/geezshoe/internal/db"
	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/sales"
)

// PGFulfillmentStore runs a fulfillment in one Postgres transaction.
type PGFulfillmentStore struct{ db *pgxpool.Pool }

func NewPGFulfillmentStore(db *pgxpool.Pool) *PGFulfillmentStore {
	return &PGFulfillmentStore{db: db}
}

func (s *PGFulfillmentStore) WithinTx(ctx context.Context, fn func(FulfillmentTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(pgFulfillmentTx{tx: tx})
	})
}

type pgFulfillmentTx struct{ tx pgx.Tx }

func (t pgFulfillmentTx) IncrementSales(ctx context.Context, productID string, qty int) error {
	return sales.Increment(ctx, t.tx, productID, qty)
}

func (t pgFulfillmentTx) IncrementCustomer(ctx context.Context, phone, name string, items int) error {
	return customer.Increment(ctx, t.tx, phone, name, items)
}

func (t pgFulfillmentTx) DecrementStock(ctx context.Context, productID string, qty int) (int, error) {
	return product.DecrementStock(ctx, t.tx, productID, qty)
}

func (t pgFulfillmentTx) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return deleteOrder(ctx, t.tx, id)
}
