package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/geezshoe/internal/cart"
)

const StatusPending = "pending"

var ErrMalformed = errors.New("order line arrays differ in length")

// Order is stored denormalized: one row per order with parallel per-line
// arrays that all share the same index.
type Order struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       string  `json:"phone"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	// OrderPlace holds the in-Addis delivery flag.
	OrderPlace bool      `json:"orderplace"`
	Coupon     *string   `json:"coupon"`
	OrderedAt  time.Time `json:"ordered_at"`
	Status     string    `json:"status"`
	IsPreorder bool      `json:"is_preorder"`

	ProductIDs   []string          `json:"product_ids"`
	ProductNames []string          `json:"product_names"`
	ProductSizes []string          `json:"product_sizes"`
	Quantities   []int             `json:"quantities"`
	UnitPrices   []decimal.Decimal `json:"unit_prices"`
	TotalPrices  []decimal.Decimal `json:"total_prices"`
}

// Line is one index across the parallel arrays.
type Line struct {
	ProductID  string
	Name       string
	Size       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Flatten copies cart lines into the parallel arrays and derives IsPreorder.
func (o *Order) Flatten(items []cart.Item) {
	n := len(items)
	o.ProductIDs = make([]string, n)
	o.ProductNames = make([]string, n)
	o.ProductSizes = make([]string, n)
	o.Quantities = make([]int, n)
	o.UnitPrices = make([]decimal.Decimal, n)
	o.TotalPrices = make([]decimal.Decimal, n)
	o.IsPreorder = false
	for i, it := range items {
		o.ProductIDs[i] = it.ID
		o.ProductNames[i] = it.Name
		o.ProductSizes[i] = it.SizeLabel()
		o.Quantities[i] = it.Qty
		o.UnitPrices[i] = it.Price
		o.TotalPrices[i] = it.LineTotal()
		if it.IsPreorder {
			o.IsPreorder = true
		}
	}
}

// CheckShape fails when the parallel arrays are not all the same length.
func (o *Order) CheckShape() error {
	n := len(o.ProductIDs)
	if len(o.ProductNames) != n || len(o.ProductSizes) != n || len(o.Quantities) != n ||
		len(o.UnitPrices) != n || len(o.TotalPrices) != n {
		return ErrMalformed
	}
	return nil
}

// Lines assumes CheckShape passed.
func (o *Order) Lines() []Line {
	out := make([]Line, len(o.ProductIDs))
	for i := range o.ProductIDs {
		out[i] = Line{
			ProductID:  o.ProductIDs[i],
			Name:       o.ProductNames[i],
			Size:       o.ProductSizes[i],
			Quantity:   o.Quantities[i],
			UnitPrice:  o.UnitPrices[i],
			TotalPrice: o.TotalPrices[i],
		}
	}
	return out
}

// TotalItems sums quantities, counting a missing quantity as one.
func (o *Order) TotalItems() int {
	n := 0
	for _, q := range o.Quantities {
		n += qtyOrOne(q)
	}
	return n
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.TotalPrices {
		total = total.Add(p)
	}
	return total
}

func qtyOrOne(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}

// ValidationError carries per-field messages from checkout.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid checkout: " + strings.Join(parts, "; ")
}
