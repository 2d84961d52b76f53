package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Minute), mr
}

func TestStore_ClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	key := s.Key("checkout", "abc")
	assert.Equal(t, "idem:checkout:abc", key)

	seen, err := s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen, "first claim")
	assert.Equal(t, time.Minute, mr.TTL(key))

	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen, "replay")

	require.NoError(t, s.Release(ctx, key))
	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen, "claimable again after release")
}

func TestStore_ClaimExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	key := s.Key("checkout", "xyz")

	_, err := s.Seen(ctx, key)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	seen, err := s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestStore_ScopesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.Seen(ctx, s.Key("checkout", "k"))
	require.NoError(t, err)
	seen, err := s.Seen(ctx, s.Key("refund", "k"))
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestStore_BackendDown(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.Seen(context.Background(), s.Key("checkout", "k"))
	assert.Error(t, err)
}
