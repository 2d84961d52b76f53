// Package cart keeps a customer's ordered list of line items in a keyed
// store and notifies subscribers on every change.
package cart

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 15
)

// Item is one cart line. (ID, Size) identifies the line.
type Item struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Qty           int              `json:"qty"`
	Size          *float64         `json:"size,omitempty"`
	Image         string           `json:"image,omitempty"`
	IsPreorder    bool             `json:"is_preorder"`
}

// Matches reports whether it is the line keyed by (id, size).
func (it Item) Matches(id string, size *float64) bool {
	if it.ID != id {
		return false
	}
	if it.Size == nil || size == nil {
		return it.Size == nil && size == nil
	}
	return *it.Size == *size
}

// SizeLabel renders the size for display and order rows; empty when unset.
func (it Item) SizeLabel() string {
	if it.Size == nil {
		return ""
	}
	return strconv.FormatFloat(*it.Size, 'f', -1, 64)
}

// LineTotal is price * qty.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// ClampQuantity bounds a requested quantity to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func TotalOf(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func CountOf(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Qty
	}
	return n
}
