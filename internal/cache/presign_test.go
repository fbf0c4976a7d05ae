package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (PresignCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisPresignCache(client), mr
}

func TestRedisPresignCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "user-1/pictures/user-1.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "user-1/pictures/user-1.jpg", "https://signed/url", time.Minute))

	url, ok, err := c.Get(ctx, "user-1/pictures/user-1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://signed/url", url)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "user-1/pictures/user-1.jpg")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with its ttl")
}

func TestRedisPresignCacheSkipsNonPositiveTTL(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(context.Background(), "k", "v", 0))
	assert.False(t, mr.Exists(presignKeyPrefix+"k"))
}

func TestRedisPresignCacheInvalidatePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"user-1/pictures/a.jpg", "user-1/resumes/b.pdf", "user-2/pictures/c.jpg"} {
		require.NoError(t, c.Set(ctx, key, "url", time.Hour))
	}

	require.NoError(t, c.InvalidatePrefix(ctx, "user-1/"))

	assert.False(t, mr.Exists(presignKeyPrefix+"user-1/pictures/a.jpg"))
	assert.False(t, mr.Exists(presignKeyPrefix+"user-1/resumes/b.pdf"))
	assert.True(t, mr.Exists(presignKeyPrefix+"user-2/pictures/c.jpg"))
}

func TestNewPresignCacheDisabledIsNoop(t *testing.T) {
	c, err := NewPresignCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewPresignCacheEnabledUsesRedisURL(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewPresignCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "k", "v", time.Hour))
	assert.True(t, mr.Exists(presignKeyPrefix+"k"))

	require.NoError(t, c.Close())
	_, _, err = c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestBuildRedisOptionsDefaults(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}
