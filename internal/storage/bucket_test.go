package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndDeleteURL(t *testing.T) {
	ctx := context.Background()
	b, err := NewLocalBucket(t.TempDir(), "http://cdn.test/media/")
	require.NoError(t, err)

	key, err := b.Upload(ctx, "products", "My Shoe.JPG", strings.NewReader("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	url := b.PublicURL(key)
	assert.Equal(t, "http://cdn.test/media/"+key, url)

	data, err := os.ReadFile(filepath.Join(b.Root(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, b.DeleteURL(ctx, url))
	_, err = os.Stat(filepath.Join(b.Root(), filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// second delete of the same object is fine
	require.NoError(t, b.DeleteURL(ctx, url))
}

func TestUpload_Rejects(t *testing.T) {
	ctx := context.Background()
	b, err := NewLocalBucket(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	_, err = b.Upload(ctx, "secrets", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadFolder)

	_, err = b.Upload(ctx, "products", "a.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadExtension)
}

func TestDelete_RejectsTraversal(t *testing.T) {
	b, err := NewLocalBucket(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	assert.Error(t, b.Delete(context.Background(), "../etc/passwd"))
	assert.ErrorIs(t, b.DeleteURL(context.Background(), "http://elsewhere/x.png"), ErrForeignURL)
}
