package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testCache interface {
	core.CacheRepository
	Stop()
}

func newEntry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now().Truncate(time.Second)
	return &core.CacheEntry{
		Key:           key,
		ModelUsed:     "logistic_regression",
		Label:         core.Positive,
		Probabilities: [core.NumClasses]float64{0.1, 0.2, 0.7},
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

func exerciseCache(t *testing.T, c testCache) {
	ctx := context.Background()
	defer c.Stop()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	fresh := newEntry("fresh", time.Hour)
	require.NoError(t, c.Set(ctx, fresh))

	got, err := c.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, fresh.ModelUsed, got.ModelUsed)
	assert.Equal(t, fresh.Label, got.Label)
	assert.Equal(t, fresh.Probabilities, got.Probabilities)
	assert.True(t, fresh.ExpiresAt.Equal(got.ExpiresAt))

	updated := newEntry("fresh", time.Hour)
	updated.Label = core.Negative
	require.NoError(t, c.Set(ctx, updated))
	got, err = c.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, core.Negative, got.Label)

	require.NoError(t, c.Set(ctx, newEntry("stale", -time.Hour)))
	_, err = c.Get(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "fresh"))
	_, err = c.Get(ctx, "fresh")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(zap.NewNop(), time.Hour))
}

func TestMemoryCacheCleanupRemovesExpired(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("a", time.Hour)))
	require.NoError(t, c.Set(ctx, newEntry("b", -time.Minute)))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), time.Hour)
	require.NoError(t, err)
	exerciseCache(t, c)
}

func TestStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	c.Stop()
	c.Stop()
}
