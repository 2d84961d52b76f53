// Package storage is the object store for product and promotional images.
// Objects live under logical folder prefixes and are served from a public base URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBadFolder    = errors.New("unknown folder")
	ErrBadExtension = errors.New("unsupported file type")
	ErrForeignURL   = errors.New("url does not belong to this bucket")
)

// Folders are the logical prefixes images may be uploaded under.
var Folders = map[string]bool{"products": true, "promotions": true}

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type LocalBucket struct {
	root    string
	baseURL string
}

func NewLocalBucket(root, baseURL string) (*LocalBucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket root: %w", err)
	}
	return &LocalBucket{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBucket) Root() string { return b.root }

// Upload stores r under folder with a generated key and returns the object path.
func (b *LocalBucket) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if !Folders[folder] {
		return "", ErrBadFolder
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrBadExtension
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := path.Join(folder, uuid.NewString()+ext)
	dst := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return key, nil
}

func (b *LocalBucket) PublicURL(key string) string {
	return b.baseURL + "/" + key
}

// Delete removes objects by path. Missing objects are not an error.
func (b *LocalBucket) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		clean := path.Clean("/" + key)[1:]
		if clean == "" || clean != key {
			errs = append(errs, fmt.Errorf("delete %q: invalid key", key))
			continue
		}
		err := os.Remove(filepath.Join(b.root, filepath.FromSlash(clean)))
		if err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("delete %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// KeyFromURL maps a public URL back to the object path.
func (b *LocalBucket) KeyFromURL(url string) (string, bool) {
	prefix := b.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// DeleteURL deletes the object behind a public URL.
func (b *LocalBucket) DeleteURL(ctx context.Context, url string) error {
	key, ok := b.KeyFromURL(url)
	if !ok {
		return ErrForeignURL
	}
	return b.Delete(ctx, key)
}
