// Package customer keeps the per-phone running count of items purchased.
package customer

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/geezshoe/internal/db"
)

type Customer struct {
	Phone               string    `json:"phone"`
	Name                string    `json:"name"`
	TotalItemsPurchased int       `json:"total_items_purchased"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NormalizePhone strips the separators customers type so "+251 911-22 33 44"
// and "+251911223344" share one row.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// Increment adds items to the customer's total, creating the row on first
// purchase. The stored name follows the latest order.
func Increment(ctx context.Context, q db.DBTX, phone, name string, items int) error {
	_, err := q.Exec(ctx, `
		INSERT INTO customers (phone, name, total_items_purchased, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (phone) DO UPDATE
		SET total_items_purchased = customers.total_items_purchased + EXCLUDED.total_items_purchased,
		    name = EXCLUDED.name,
		    updated_at = NOW()
	`, NormalizePhone(phone), name, items)
	return err
}

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Customer, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT phone, name, total_items_purchased, updated_at
		FROM customers
		ORDER BY total_items_purchased DESC, phone
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.Phone, &c.Name, &c.TotalItemsPurchased, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
