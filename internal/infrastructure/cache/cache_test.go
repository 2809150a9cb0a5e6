package cache

import (
	"context"
	"testing"
	"time"

	"sif-shopify-layer/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func sampleConfig() *domain.EffectiveConfig {
	button := domain.DefaultButtonConfig()
	return &domain.EffectiveConfig{EnableButton: true, Button: &button}
}

func TestRedisConfigCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		_, client := newMiniredis(t)
		c := NewRedisConfigCache(client, time.Minute, zerolog.Nop())

		_, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.False(t, hit)

		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", sampleConfig()))
		cfg, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, sampleConfig(), cfg)
	})

	t.Run("caches not configured", func(t *testing.T) {
		_, client := newMiniredis(t)
		c := NewRedisConfigCache(client, time.Minute, zerolog.Nop())

		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "", nil))
		cfg, hit, err := c.Get(ctx, "demo.myshopify.com", "")
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Nil(t, cfg)
	})

	t.Run("invalidate drops every instance of the store", func(t *testing.T) {
		_, client := newMiniredis(t)
		c := NewRedisConfigCache(client, time.Minute, zerolog.Nop())

		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", sampleConfig()))
		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-2", sampleConfig()))
		require.NoError(t, c.Set(ctx, "other.myshopify.com", "inst-1", sampleConfig()))
		require.NoError(t, c.Invalidate(ctx, "demo.myshopify.com"))

		_, hit, _ := c.Get(ctx, "demo.myshopify.com", "inst-1")
		assert.False(t, hit)
		_, hit, _ = c.Get(ctx, "demo.myshopify.com", "inst-2")
		assert.False(t, hit)
		_, hit, _ = c.Get(ctx, "other.myshopify.com", "inst-1")
		assert.True(t, hit)
	})

	t.Run("entries expire", func(t *testing.T) {
		srv, client := newMiniredis(t)
		c := NewRedisConfigCache(client, 30*time.Second, zerolog.Nop())

		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", sampleConfig()))
		srv.FastForward(31 * time.Second)

		_, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("corrupted entry is a miss", func(t *testing.T) {
		srv, client := newMiniredis(t)
		c := NewRedisConfigCache(client, time.Minute, zerolog.Nop())
		require.NoError(t, srv.Set(entryKey("demo.myshopify.com", "inst-1"), "{not json"))

		_, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.False(t, hit)
		assert.False(t, srv.Exists(entryKey("demo.myshopify.com", "inst-1")))
	})

	t.Run("each instance keeps its own expiry", func(t *testing.T) {
		srv, client := newMiniredis(t)
		c := NewRedisConfigCache(client, 30*time.Second, zerolog.Nop())

		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", sampleConfig()))
		srv.FastForward(20 * time.Second)
		require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-2", sampleConfig()))
		srv.FastForward(15 * time.Second)

		_, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.False(t, hit)
		_, hit, err = c.Get(ctx, "demo.myshopify.com", "inst-2")
		require.NoError(t, err)
		assert.True(t, hit)

		require.NoError(t, c.Invalidate(ctx, "demo.myshopify.com"))
		_, hit, _ = c.Get(ctx, "demo.myshopify.com", "inst-2")
		assert.False(t, hit)
		assert.False(t, srv.Exists(indexKey("demo.myshopify.com")))
	})
}

func TestRedisStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("state is usable once", func(t *testing.T) {
		_, client := newMiniredis(t)
		s := NewRedisStateStore(client)

		require.NoError(t, s.Save(ctx, "nonce", "demo.myshopify.com", time.Minute))
		shop, err := s.Consume(ctx, "nonce")
		require.NoError(t, err)
		assert.Equal(t, "demo.myshopify.com", shop)

		shop, err = s.Consume(ctx, "nonce")
		require.NoError(t, err)
		assert.Empty(t, shop)
	})

	t.Run("expired state is unknown", func(t *testing.T) {
		srv, client := newMiniredis(t)
		s := NewRedisStateStore(client)

		require.NoError(t, s.Save(ctx, "nonce", "demo.myshopify.com", time.Minute))
		srv.FastForward(2 * time.Minute)

		shop, err := s.Consume(ctx, "nonce")
		require.NoError(t, err)
		assert.Empty(t, shop)
	})
}

func TestInMemoryConfigCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemoryConfigCache(30 * time.Second)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", sampleConfig()))
	cfg, hit, err := c.Get(ctx, "demo.myshopify.com", "inst-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sampleConfig(), cfg)

	now = now.Add(31 * time.Second)
	_, hit, _ = c.Get(ctx, "demo.myshopify.com", "inst-1")
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "demo.myshopify.com", "inst-1", nil))
	require.NoError(t, c.Invalidate(ctx, "demo.myshopify.com"))
	_, hit, _ = c.Get(ctx, "demo.myshopify.com", "inst-1")
	assert.False(t, hit)
}

func TestInMemoryStateStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStateStore()

	require.NoError(t, s.Save(ctx, "nonce", "demo.myshopify.com", time.Minute))
	shop, err := s.Consume(ctx, "nonce")
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", shop)

	shop, err = s.Consume(ctx, "nonce")
	require.NoError(t, err)
	assert.Empty(t, shop)
}
