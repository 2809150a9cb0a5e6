package application_test

import (
	"context"
	"testing"
	"time"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/domain/themeasset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Connect(t *testing.T) {
	ctx := context.Background()

	t.Run("leaves a single active link", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.accounts.Connect(ctx, testShop, "acc-1"))
		require.NoError(t, f.accounts.Connect(ctx, testShop, "acc-2"))

		links := f.links.Links(testShop)
		require.Len(t, links, 2)
		active := 0
		for _, l := range links {
			if l.IsActive {
				active++
				assert.Equal(t, "acc-2", l.AccountID)
			}
		}
		assert.Equal(t, 1, active)

		got, err := f.accounts.Active(ctx, testShop)
		require.NoError(t, err)
		assert.Equal(t, &application.ActiveAccount{Connected: true, AccountID: "acc-2"}, got)
	})

	t.Run("removes script tags of the previous account", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1")
		f.storefront.AddScriptTag("https://cdn.other-app.com/widget.js")

		require.NoError(t, f.accounts.Connect(ctx, testShop, "acc-1"))

		tags := f.storefront.ScriptTags()
		require.Len(t, tags, 1)
		assert.Equal(t, "https://cdn.other-app.com/widget.js", tags[0].Src)
	})

	t.Run("unknown store", func(t *testing.T) {
		f := newFixture(t)

		err := f.accounts.Connect(ctx, testShop, "acc-1")
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	})
}

func TestAccountService_Active(t *testing.T) {
	f := newFixture(t)

	got, err := f.accounts.Active(context.Background(), testShop)
	require.NoError(t, err)
	assert.False(t, got.Connected)
}

func TestAccountService_ListInstances(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.instances.Instances = []*domain.Instance{
		{ID: "old", AccountID: "acc-1", CreatedAt: base},
		{ID: "other", AccountID: "acc-2", CreatedAt: base.Add(time.Hour)},
		{ID: "new", AccountID: "acc-1", CreatedAt: base.Add(2 * time.Hour)},
	}

	got, err := f.accounts.ListInstances(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}

func TestAccountService_UIState(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates an active link", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		instance := "inst-1"
		enabled := true

		result, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{
			SelectedInstanceID: &instance,
			EnableButton:       &enabled,
		})
		require.NoError(t, err)
		assert.Equal(t, &application.SaveUIStateResult{Created: true}, result)

		state, err := f.accounts.GetUIState(ctx, testShop, "acc-1")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, "inst-1", *state.SelectedInstanceID)
		assert.True(t, state.EnableProductButton)
		assert.False(t, state.EnableProductImage)
		assert.Nil(t, state.ButtonText)

		links := f.links.Links(testShop)
		require.Len(t, links, 1)
		assert.True(t, links[0].IsActive)
	})

	t.Run("later saves update and mirror legacy fields", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		_, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{})
		require.NoError(t, err)

		button := domain.ButtonConfig{Text: "Go", Bg: "#000", Color: "#fff", Radius: 2}
		result, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{Button: &button})
		require.NoError(t, err)
		assert.True(t, result.Updated)
		assert.False(t, result.Created)

		state, err := f.accounts.GetUIState(ctx, testShop, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, &button, state.ButtonConfig)
		assert.Equal(t, "Go", *state.ButtonText)
		assert.Equal(t, 2, *state.ButtonRadius)
	})

	t.Run("falls back to the active link of another account", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.accounts.Connect(ctx, testShop, "acc-1"))

		state, err := f.accounts.GetUIState(ctx, testShop, "acc-2")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Nil(t, state.SelectedInstanceID)
	})

	t.Run("no state for unknown store", func(t *testing.T) {
		f := newFixture(t)

		state, err := f.accounts.GetUIState(ctx, testShop, "acc-1")
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("save invalidates cached config", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		require.NoError(t, f.accounts.Connect(ctx, testShop, "acc-1"))

		cfg, err := f.config.Resolve(ctx, testShop, "")
		require.NoError(t, err)
		assert.False(t, cfg.EnableOverlay)

		enabled := true
		_, err = f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{EnableOverlay: &enabled})
		require.NoError(t, err)

		cfg, err = f.config.Resolve(ctx, testShop, "")
		require.NoError(t, err)
		assert.True(t, cfg.EnableOverlay)
	})

	t.Run("switching instance moves the overlay", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		seedTheme(f)
		first, second := "inst-1", "inst-2"
		enabled := true

		_, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{SelectedInstanceID: &first, EnableOverlay: &enabled})
		require.NoError(t, err)
		_, err = f.placements.EnableOverlay(ctx, application.EnableOverlayInput{Shop: testShop, InstanceID: first})
		require.NoError(t, err)

		result, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{SelectedInstanceID: &second})
		require.NoError(t, err)
		assert.True(t, result.Switched)

		section, _ := f.storefront.Asset(mainTheme, mainSectionKey)
		assert.Contains(t, section, "instance=inst-2")
		assert.NotContains(t, section, "instance=inst-1")
		snippet, ok := f.storefront.Asset(mainTheme, themeasset.OverlaySnippetKey)
		require.True(t, ok)
		assert.Contains(t, snippet, `data-sif-instance-id="inst-2"`)
	})

	t.Run("switching with overlay disabled only cleans up", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		seedTheme(f)
		first, second := "inst-1", "inst-2"

		_, err := f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{SelectedInstanceID: &first})
		require.NoError(t, err)
		_, err = f.placements.EnableOverlay(ctx, application.EnableOverlayInput{Shop: testShop, InstanceID: first})
		require.NoError(t, err)

		_, err = f.accounts.SaveUIState(ctx, testShop, "acc-1", domain.LinkUpdate{SelectedInstanceID: &second})
		require.NoError(t, err)

		section, _ := f.storefront.Asset(mainTheme, mainSectionKey)
		assert.Equal(t, mainProduct, section)
		_, ok := f.storefront.Asset(mainTheme, themeasset.OverlaySnippetKey)
		assert.False(t, ok)
	})
}
