package product

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const MaxImages = 3

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// ItemNumber is the stock count.
	ItemNumber    int              `json:"item_number"`
	Price         decimal.Decimal  `json:"price"`
	FakePrice     *decimal.Decimal `json:"fake_price,omitempty"`
	Discount      bool             `json:"discount"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	DiscountLabel string           `json:"discount_label,omitempty"`
	Images        []string         `json:"images"`
	Sizes         []string         `json:"sizes"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// EffectivePrice is what a customer pays per unit.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount && p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// DisplayOriginalPrice is the crossed-out price shown next to EffectivePrice, if any.
func (p *Product) DisplayOriginalPrice() *decimal.Decimal {
	if p.Discount && p.DiscountPrice != nil {
		price := p.Price
		return &price
	}
	if p.FakePrice != nil && p.FakePrice.GreaterThan(p.Price) {
		fake := *p.FakePrice
		return &fake
	}
	return nil
}

// ValidationError carries per-field messages.
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
	return "invalid product: " + strings.Join(parts, "; ")
}

// Normalize enforces the edit-boundary rules: is_active follows stock and a
// discount needs a discount price strictly below the regular price.
func (p *Product) Normalize() error {
	fields := map[string]string{}

	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Name == "" {
		fields["name"] = "required"
	}
	if !p.Price.IsPositive() {
		fields["price"] = "must be greater than zero"
	}
	if p.ItemNumber < 0 {
		fields["item_number"] = "must not be negative"
	}
	if len(p.Images) > MaxImages {
		fields["images"] = fmt.Sprintf("at most %d images", MaxImages)
	}
	if p.Discount {
		switch {
		case p.DiscountPrice == nil:
			fields["discount_price"] = "required when discount is set"
		case !p.DiscountPrice.IsPositive():
			fields["discount_price"] = "must be greater than zero"
		case !p.DiscountPrice.LessThan(p.Price):
			fields["discount_price"] = "must be lower than price"
		}
	} else {
		p.DiscountPrice = nil
		p.DiscountLabel = ""
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	p.IsActive = p.ItemNumber > 0

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// total items found
	Items []Product `json:"items"`
}

// ProductRequest is the create/update payload of the admin product form.
// swagger:model ProductRequest
type ProductRequest struct {
	Name          string           `json:"name"           example:"Habesha Runner"`
	Description   string           `json:"description"    example:"Leather sneaker"`
	ItemNumber    int              `json:"item_number"    example:"12"`
	Price         decimal.Decimal  `json:"price"          example:"2500.00"`
	FakePrice     *decimal.Decimal `json:"fake_price"     example:"3200.00"`
	Discount      bool             `json:"discount"`
	DiscountPrice *decimal.Decimal `json:"discount_price" example:"2100.00"`
	DiscountLabel string           `json:"discount_label" example:"Timket sale"`
	Images        []string         `json:"images"`
	Sizes         []string         `json:"sizes"`
}

func (r ProductRequest) ToProduct(id string) *Product {
	return &Product{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		ItemNumber:    r.ItemNumber,
		Price:         r.Price,
		FakePrice:     r.FakePrice,
		Discount:      r.Discount,
		DiscountPrice: r.DiscountPrice,
		DiscountLabel: r.DiscountLabel,
		Images:        r.Images,
		Sizes:         r.Sizes,
	}
}
