package order

import (
	"context"
	"log/slog"

	"github.com/MikeMC777/geezshoe/internal/events"
)

// Canceller removes an order without touching sales, stock or customers.
type Canceller struct {
	repo   Repository
	events events.Publisher
	log    *slog.Logger
}

func NewCanceller(repo Repository, pub events.Publisher, log *slog.Logger) *Canceller {
	return &Canceller{repo: repo, events: pub, log: log}
}

func (c *Canceller) Cancel(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "order.Cancel")
	defer span.End()

	deleted, err := c.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := c.events.Publish(ctx, events.Event{Type: events.OrderCancelled, Key: id, Payload: map[string]string{"id": id}}); err != nil {
		c.log.Warn("order cancelled event not published", "order_id", id, "err", err)
	}
	c.log.Info("order cancelled", "order_id", id)
	return nil
}
