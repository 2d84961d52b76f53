package product

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

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

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Product, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update replaces the product and removes images no longer referenced.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	old, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.removeImages(ctx, p.ID, dropped(old.Images, p.Images))
	return nil
}

// Delete removes the product row, then its images. Image cleanup is best-effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.removeImages(ctx, id, p.Images)
	return nil
}

func (s *Service) removeImages(ctx context.Context, productID string, urls []string) {
	for _, u := range urls {
		if err := s.images.DeleteURL(ctx, u); err != nil {
			s.log.Warn("product image cleanup failed", "product_id", productID, "url", u, "err", err)
		}
	}
}

func dropped(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, u := range after {
		keep[u] = true
	}
	var out []string
	for _, u := range before {
		if !keep[u] {
			out = append(out, u)
		}
	}
	return out
}
