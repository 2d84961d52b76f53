package company

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/geezshoe/internal/logging"
)

type memRepo struct{ info *Info }

func (m *memRepo) Get(context.Context) (*Info, error) {
	if m.info == nil {
		return &Info{Socials: map[string]string{}, PromoImages: []string{}}, nil
	}
	c := *m.info
	return &c, nil
}

func (m *memRepo) Upsert(_ context.Context, in *Info) error {
	c := *in
	m.info = &c
	return nil
}

type recImages struct {
	deleted []string
	err     error
}

func (r *recImages) DeleteURL(_ context.Context, url string) error {
	r.deleted = append(r.deleted, url)
	return r.err
}

func TestUpdate_DeletesDroppedPromoImages(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{info: &Info{Name: "GeezShoe", PromoImages: []string{"a.jpg", "b.jpg"}}}
	imgs := &recImages{err: errors.New("bucket down")}
	s := NewService(repo, imgs, logging.Discard())

	err := s.Update(ctx, &Info{Name: " GeezShoe ", PromoImages: []string{"b.jpg", "c.jpg"}})
	require.NoError(t, err, "cleanup failure is not surfaced")

	assert.Equal(t, []string{"a.jpg"}, imgs.deleted)
	got, _ := s.Get(ctx)
	assert.Equal(t, "GeezShoe", got.Name)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, got.PromoImages)
	assert.NotNil(t, got.Socials)
}

func TestUpdate_Rejects(t *testing.T) {
	s := NewService(&memRepo{}, &recImages{}, logging.Discard())

	assert.ErrorIs(t, s.Update(context.Background(), &Info{Name: "  "}), ErrInvalid)
	assert.ErrorIs(t, s.Update(context.Background(), &Info{Name: "x", PromoImages: make([]string, MaxPromoImages+1)}), ErrInvalid)
}
