package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/geezshoe/internal/db"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `
	id, name, email, phone, description, location, orderplace, coupon, ordered_at,
	status, is_preorder, product_ids, product_names, product_sizes, quantities,
	unit_prices::text[], total_prices::text[]`

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	if err := o.CheckShape(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, name, email, phone, description, location, orderplace, coupon,
			ordered_at, status, is_preorder, product_ids, product_names, product_sizes,
			quantities, unit_prices, total_prices)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::numeric[],$17::numeric[])
	`, o.ID, o.Name, o.Email, o.Phone, o.Description, o.Location, o.OrderPlace, o.Coupon,
		o.OrderedAt, o.Status, o.IsPreorder, o.ProductIDs, o.ProductNames, o.ProductSizes,
		o.Quantities, decStrings(o.UnitPrices), decStrings(o.TotalPrices))
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// List returns unresolved orders, newest first. Resolved orders no longer exist.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+selectCols+`
		FROM orders
		ORDER BY ordered_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return deleteOrder(ctx, r.db, id)
}

func deleteOrder(ctx context.Context, q db.DBTX, id string) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o            Order
		unit, totals []string
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Description, &o.Location,
		&o.OrderPlace, &o.Coupon, &o.OrderedAt, &o.Status, &o.IsPreorder, &o.ProductIDs,
		&o.ProductNames, &o.ProductSizes, &o.Quantities, &unit, &totals); err != nil {
		return nil, err
	}
	var err error
	if o.UnitPrices, err = parseDecs(unit); err != nil {
		return nil, err
	}
	if o.TotalPrices, err = parseDecs(totals); err != nil {
		return nil, err
	}
	return &o, nil
}

func decStrings(ds []decimal.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func parseDecs(ss []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
