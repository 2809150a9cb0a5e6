package application_test

import (
	"context"
	"testing"

	"sif-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_Resolve(t *testing.T) {
	ctx := context.Background()
	overlay := domain.OverlayConfig{Text: "Try", Bg: "#000", Color: "#fff"}

	t.Run("link selecting the instance wins", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.links.Upsert(ctx, &domain.AccountStoreLink{
			AccountID: "acc-1", StoreDomain: testShop, IsActive: true, EnableButton: true,
		}))
		require.NoError(t, f.links.Upsert(ctx, &domain.AccountStoreLink{
			AccountID: "acc-2", StoreDomain: testShop, SelectedInstanceID: "inst-2", EnableOverlay: true, Overlay: &overlay,
		}))

		cfg, err := f.config.Resolve(ctx, testShop, "inst-2")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.False(t, cfg.EnableButton)
		assert.True(t, cfg.EnableOverlay)
		assert.Equal(t, &overlay, cfg.Overlay)
	})

	t.Run("falls back to the active link", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.links.Upsert(ctx, &domain.AccountStoreLink{
			AccountID: "acc-1", StoreDomain: testShop, IsActive: true, EnableButton: true,
		}))

		cfg, err := f.config.Resolve(ctx, testShop, "unknown")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.True(t, cfg.EnableButton)
	})

	t.Run("nil when not configured", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)

		cfg, err := f.config.Resolve(ctx, testShop, "inst-1")
		require.NoError(t, err)
		assert.Nil(t, cfg)

		cfg, err = f.config.Resolve(ctx, "unknown.myshopify.com", "inst-1")
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("second lookup is served from cache until invalidated", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.links.Upsert(ctx, &domain.AccountStoreLink{
			AccountID: "acc-1", StoreDomain: testShop, IsActive: true,
		}))

		_, err := f.config.Resolve(ctx, testShop, "inst-1")
		require.NoError(t, err)

		enabled := true
		_, err = f.links.Update(ctx, testShop, "acc-1", domain.LinkUpdate{EnableButton: &enabled})
		require.NoError(t, err)

		cfg, err := f.config.Resolve(ctx, testShop, "inst-1")
		require.NoError(t, err)
		assert.False(t, cfg.EnableButton)
		assert.Equal(t, 1, f.metrics.CacheHits)
		assert.Equal(t, 1, f.metrics.CacheMisses)

		f.config.Invalidate(ctx, testShop)
		cfg, err = f.config.Resolve(ctx, testShop, "inst-1")
		require.NoError(t, err)
		assert.True(t, cfg.EnableButton)
	})
}
