// Package product provides the catalog repository and the admin-side product service.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/geezshoe/internal/db"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Q          string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `
	id, name, description, item_number, price::text, fake_price::text,
	discount, discount_price::text, discount_label, images, sizes, is_active,
	created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, item_number, price, fake_price,
			discount, discount_price, discount_label, images, sizes, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7,$8::numeric,$9,$10,$11,$12,NOW(),NOW())
	`, p.ID, p.Name, p.Description, p.ItemNumber, p.Price.String(), decText(p.FakePrice),
		p.Discount, decText(p.DiscountPrice), p.DiscountLabel, p.Images, p.Sizes, p.IsActive)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT `+selectCols+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		  AND (NOT $2 OR is_active)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, search, q.ActiveOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2,
		    description = $3,
		    item_number = $4,
		    price = $5::numeric,
		    fake_price = $6::numeric,
		    discount = $7,
		    discount_price = $8::numeric,
		    discount_label = $9,
		    images = $10,
		    sizes = $11,
		    is_active = $12,
		    updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.ItemNumber, p.Price.String(), decText(p.FakePrice),
		p.Discount, decText(p.DiscountPrice), p.DiscountLabel, p.Images, p.Sizes, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// DecrementStock lowers item_number by qty, floored at zero, keeping is_active
// in step. It returns the new stock, or ErrNotFound if the product is gone.
func DecrementStock(ctx context.Context, q db.DBTX, id string, qty int) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `
		UPDATE products
		SET item_number = GREATEST(item_number - $2, 0),
		    is_active = GREATEST(item_number - $2, 0) > 0,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING item_number
	`, id, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return stock, err
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p                    Product
		price                string
		fakePrice, discPrice *string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ItemNumber, &price, &fakePrice,
		&p.Discount, &discPrice, &p.DiscountLabel, &p.Images, &p.Sizes, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if p.FakePrice, err = parseDec(fakePrice); err != nil {
		return nil, err
	}
	if p.DiscountPrice, err = parseDec(discPrice); err != nil {
		return nil, err
	}
	return &p, nil
}

func decText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDec(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
