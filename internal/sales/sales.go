// Package sales keeps the per-product running count of units sold.
package sales

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/geezshoe/internal/db"
)

type Sale struct {
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	QuantitySold int       `json:"quantity_sold"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Increment adds qty to the product's counter in a single statement, creating
// the row on first sale.
func Increment(ctx context.Context, q db.DBTX, productID string, qty int) error {
	_, err := q.Exec(ctx, `
		INSERT INTO sales (product_id, quantity_sold, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET quantity_sold = sales.quantity_sold + EXCLUDED.quantity_sold,
		    updated_at = NOW()
	`, productID, qty)
	return err
}

type Repository interface {
	List(ctx context.Context) ([]Sale, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// List returns every counter, best sellers first. Names come from the catalog
// and are empty for products deleted since.
func (r *PGRepo) List(ctx context.Context) ([]Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT s.product_id, COALESCE(p.name, ''), s.quantity_sold, s.updated_at
		FROM sales s
		LEFT JOIN products p ON p.id = s.product_id
		ORDER BY s.quantity_sold DESC, s.product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.QuantitySold, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
