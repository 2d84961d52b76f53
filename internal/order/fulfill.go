package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/MikeMC777/geezshoe/internal/events"
	"github.com/MikeMC777/geezshoe/internal/product"
)

// FulfillmentTx is the set of writes a fulfillment performs. All of them
// commit together or not at all.
type FulfillmentTx interface {
	IncrementSales(ctx context.Context, productID string, qty int) error
	IncrementCustomer(ctx context.Context, phone, name string, items int) error
	// DecrementStock returns product.ErrNotFound when the product is gone.
	DecrementStock(ctx context.Context, productID string, qty int) (int, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)
}

type FulfillmentStore interface {
	WithinTx(ctx context.Context, fn func(tx FulfillmentTx) error) error
}

// Receipt summarizes a committed fulfillment.
type Receipt struct {
	OrderID         string         `json:"order_id"`
	ItemsSold       int            `json:"items_sold"`
	Stock           map[string]int `json:"stock"`
	SkippedProducts []string       `json:"skipped_products,omitempty"`
}

type Fulfiller struct {
	store  FulfillmentStore
	events events.Publisher
	log    *slog.Logger
}

func NewFulfiller(store FulfillmentStore, pub events.Publisher, log *slog.Logger) *Fulfiller {
	return &Fulfiller{store: store, events: pub, log: log}
}

// Fulfill marks o as sold: it adds every line to the product's sales, adds the
// order's item count to the customer keyed by phone, lowers each product's
// stock and removes the order. Products deleted since checkout still count as
// sold but have no stock to lower. Returns ErrNotFound when the order was
// already resolved.
func (f *Fulfiller) Fulfill(ctx context.Context, o *Order) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "order.Fulfill")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", o.ID))

	if err := o.CheckShape(); err != nil {
		span.SetStatus(codes.Error, "malformed")
		return nil, err
	}

	var rec *Receipt
	err := f.store.WithinTx(ctx, func(tx FulfillmentTx) error {
		rec = &Receipt{OrderID: o.ID, Stock: map[string]int{}}
		lines := o.Lines()
		for _, l := range lines {
			if err := tx.IncrementSales(ctx, l.ProductID, qtyOrOne(l.Quantity)); err != nil {
				return fmt.Errorf("sales %s: %w", l.ProductID, err)
			}
		}

		rec.ItemsSold = o.TotalItems()
		if err := tx.IncrementCustomer(ctx, o.Phone, o.Name, rec.ItemsSold); err != nil {
			return fmt.Errorf("customer: %w", err)
		}

		for _, l := range lines {
			stock, err := tx.DecrementStock(ctx, l.ProductID, qtyOrOne(l.Quantity))
			if errors.Is(err, product.ErrNotFound) {
				f.log.Warn("fulfill: product gone, stock not adjusted", "order_id", o.ID, "product_id", l.ProductID)
				rec.SkippedProducts = append(rec.SkippedProducts, l.ProductID)
				continue
			}
			if err != nil {
				return fmt.Errorf("stock %s: %w", l.ProductID, err)
			}
			rec.Stock[l.ProductID] = stock
		}

		deleted, err := tx.DeleteOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fulfill")
		return nil, err
	}

	if err := f.events.Publish(ctx, events.Event{Type: events.OrderFulfilled, Key: o.ID, Payload: rec}); err != nil {
		f.log.Warn("order fulfilled event not published", "order_id", o.ID, "err", err)
	}
	f.log.Info("order fulfilled", "order_id", o.ID, "items", rec.ItemsSold, "skipped", len(rec.SkippedProducts))
	return rec, nil
}
