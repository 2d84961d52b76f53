// Package company holds the single storefront settings row.
package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const MaxPromoImages = 5

var ErrInvalid = errors.New("invalid company info")

// Info is the company_info row (id is always 1).
// swagger:model
type Info struct {
	Name        string            `json:"name"    example:"GeezShoe"`
	Email       string            `json:"email"   example:"hello@geezshoe.com"`
	Phone       string            `json:"phone"   example:"+251911223344"`
	Address     string            `json:"address" example:"Bole, Addis Ababa"`
	About       string            `json:"about"`
	Socials     map[string]string `json:"socials"`
	PromoImages []string          `json:"promo_images"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context) (*Info, error)
	Upsert(ctx context.Context, in *Info) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Get returns an empty Info before the row is first saved.
func (r *PGRepo) Get(ctx context.Context) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var in Info
	err := r.db.QueryRow(ctx, `
		SELECT name, email, phone, address, about, socials, promo_images, updated_at
		FROM company_info WHERE id = 1
	`).Scan(&in.Name, &in.Email, &in.Phone, &in.Address, &in.About, &in.Socials, &in.PromoImages, &in.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Info{Socials: map[string]string{}, PromoImages: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *PGRepo) Upsert(ctx context.Context, in *Info) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO company_info (id, name, email, phone, address, about, socials, promo_images, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    phone = EXCLUDED.phone,
		    address = EXCLUDED.address,
		    about = EXCLUDED.about,
		    socials = EXCLUDED.socials,
		    promo_images = EXCLUDED.promo_images,
		    updated_at = NOW()
		RETURNING updated_at
	`, in.Name, in.Email, in.Phone, in.Address, in.About, in.Socials, in.PromoImages).Scan(&in.UpdatedAt)
}

// ImageStore deletes stored images by their public URL.
type ImageStore interface {
	DeleteURL(ctx context.Context, url string) error
}

type Service struct {
	repo   Repository
	images ImageStore
	log    *slog.Logger
}

func NewService(repo Repository, images ImageStore, log *slog.Logger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

func (s *Service) Get(ctx context.Context) (*Info, error) {
	return s.repo.Get(ctx)
}

// Update saves in and then deletes promotional images it no longer lists.
func (s *Service) Update(ctx context.Context, in *Info) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(in.PromoImages) > MaxPromoImages {
		return fmt.Errorf("%w: at most %d promotional images", ErrInvalid, MaxPromoImages)
	}
	if in.Socials == nil {
		in.Socials = map[string]string{}
	}
	if in.PromoImages == nil {
		in.PromoImages = []string{}
	}

	old, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, in); err != nil {
		return fmt.Errorf("save company info: %w", err)
	}

	keep := make(map[string]bool, len(in.PromoImages))
	for _, u := range in.PromoImages {
		keep[u] = true
	}
	for _, u := range old.PromoImages {
		if keep[u] {
			continue
		}
		if err := s.images.DeleteURL(ctx, u); err != nil {
			s.log.Warn("promo image cleanup failed", "url", u, "err", err)
		}
	}
	return nil
}
