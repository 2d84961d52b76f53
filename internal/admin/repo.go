package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	// UpdateNormal changes name and email of a "normal" admin only.
	UpdateNormal(ctx context.Context, id, name, email string) (*Account, error)
	SetEmail(ctx context.Context, id, email string) error
	DeleteNormal(ctx context.Context, id string) (bool, error)
	ListNormal(ctx context.Context) ([]Account, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `id, name, email, role, created_at`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanAccount(r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM admins WHERE id=$1`, id))
}

func (r *PGRepo) Create(ctx context.Context, a *Account) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO admins (id, name, email, role, created_at)
		VALUES ($1,$2,$3,$4,NOW())
		RETURNING created_at
	`, a.ID, a.Name, a.Email, a.Role).Scan(&a.CreatedAt)
}

func (r *PGRepo) UpdateNormal(ctx context.Context, id, name, email string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanAccount(r.db.QueryRow(ctx, `
		UPDATE admins SET name=$2, email=$3
		WHERE id=$1 AND role='normal'
		RETURNING `+selectCols, id, name, email))
}

func (r *PGRepo) SetEmail(ctx context.Context, id, email string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE admins SET email=$2 WHERE id=$1`, id, email)
	return err
}

func (r *PGRepo) DeleteNormal(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM admins WHERE id=$1 AND role='normal'`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) ListNormal(ctx context.Context) ([]Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+selectCols+` FROM admins WHERE role='normal' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
