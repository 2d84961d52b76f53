package order

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/MikeMC777/geezshoe/internal/cart"
	"github.com/MikeMC777/geezshoe/internal/events"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var tracer = otel.Tracer("github.com/MikeMC777/geezshoe/internal/order")

// Placer turns a cart into a pending order.
type Placer struct {
	repo   Repository
	events events.Publisher
	log    *slog.Logger
	now    func() time.Time
}

func NewPlacer(repo Repository, pub events.Publisher, log *slog.Logger) *Placer {
	return &Placer{repo: repo, events: pub, log: log, now: time.Now}
}

// Validate collects every field error of the form and the cart.
func Validate(req CheckoutRequest, items []cart.Item) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	phone := strings.TrimSpace(req.Phone)
	switch {
	case phone == "":
		fields["phone"] = "required"
	case !phonePattern.MatchString(phone):
		fields["phone"] = "invalid phone number"
	}
	if strings.TrimSpace(req.Location) == "" {
		fields["location"] = "required"
	}
	if email := strings.TrimSpace(req.Email); email != "" && !emailPattern.MatchString(email) {
		fields["email"] = "invalid email"
	}
	if len(items) == 0 {
		fields["cart"] = "cart is empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Place validates the form, persists one pending order built from the cart
// and clears the cart. On any failure before the insert commits the cart is
// left as it was.
func (p *Placer) Place(ctx context.Context, req CheckoutRequest, c *cart.Store) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.Place")
	defer span.End()

	items, err := c.Items(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cart read")
		return nil, err
	}
	if err := Validate(req, items); err != nil {
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}

	o := &Order{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		OrderPlace:  req.InAddis,
		Coupon:      optional(req.Coupon),
		OrderedAt:   p.now().UTC(),
		Status:      StatusPending,
	}
	o.Flatten(items)
	span.SetAttributes(attribute.String("order.id", o.ID), attribute.Int("order.lines", len(items)))

	if err := p.repo.Create(ctx, o); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		p.log.Error("order insert failed", "err", err)
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := c.Clear(ctx); err != nil {
		p.log.Error("cart clear after order failed", "order_id", o.ID, "cart", c.Key(), "err", err)
	}

	if err := p.events.Publish(ctx, events.Event{Type: events.OrderPlaced, Key: o.ID, Payload: o}); err != nil {
		p.log.Warn("order placed event not published", "order_id", o.ID, "err", err)
	}
	p.log.Info("order placed", "order_id", o.ID, "lines", len(items), "total", o.Total().String())
	return o, nil
}

func normalizeEmail(s string) *string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
