package application_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embedURL = testAppURL + application.EmbedScriptPath

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestScriptTagService_BuildSrc(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		placements domain.Placements
		styles     application.StyleOverrides
		want       string
	}{
		{
			name: "defaults are omitted",
			styles: application.StyleOverrides{
				ButtonText:   strPtr(domain.DefaultButtonText),
				ButtonRadius: intPtr(domain.DefaultButtonRadius),
			},
			want: embedURL + "?instance_id=inst-1",
		},
		{
			name:       "placement flags",
			placements: domain.Placements{ProductButton: true, ProductImage: true},
			want:       embedURL + "?instance_id=inst-1&p=bi",
		},
		{
			name:       "styling in fixed order",
			placements: domain.Placements{ProductImage: true},
			styles: application.StyleOverrides{
				OverlayColor: strPtr("#000"),
				ButtonBg:     strPtr("red"),
				ButtonRadius: intPtr(500),
			},
			want: embedURL + "?instance_id=inst-1&p=i&bb=red&br=64&oc=%23000",
		},
		{
			name:   "long text is truncated",
			styles: application.StyleOverrides{ButtonText: strPtr(strings.Repeat("x", 60))},
			want:   embedURL + "?instance_id=inst-1&bt=" + strings.Repeat("x", 40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.scriptTags.BuildSrc("inst-1", tt.placements, tt.styles))
		})
	}
}

func TestScriptTagService_Install(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces every app tag with one", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		first := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1&p=b")
		second := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-2")
		foreign := f.storefront.AddScriptTag("https://cdn.other-app.com/widget.js")

		result, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{
			Shop:       testShop,
			InstanceID: "inst-3",
			Placements: domain.Placements{ProductButton: true},
		})
		require.NoError(t, err)

		assert.True(t, result.OK)
		assert.ElementsMatch(t, []uint64{first, second}, result.Deleted)
		require.NotNil(t, result.ScriptTag)
		assert.Equal(t, embedURL+"?instance_id=inst-3&p=b", result.ScriptTag.Src)

		tags := f.storefront.ScriptTags()
		require.Len(t, tags, 2)
		assert.Equal(t, foreign, tags[0].ID)
		assert.Equal(t, "onload", tags[1].Event)
		assert.Equal(t, "online_store", tags[1].DisplayScope)

		placement, err := f.placementRepo.GetPlacement(ctx, testShop, domain.FeatureButton, domain.PlacementScriptTag)
		require.NoError(t, err)
		assert.True(t, placement.Active)
		assert.Equal(t, "inst-3", placement.InstanceID)
	})

	t.Run("reinstalling the same instance keeps a single tag", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)

		for i := 0; i < 3; i++ {
			_, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{Shop: testShop, InstanceID: "inst-1"})
			require.NoError(t, err)
		}
		assert.Len(t, f.storefront.ScriptTags(), 1)
	})

	t.Run("tags of another shop are left alone", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		other := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1&shop=other.myshopify.com")

		result, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{Shop: testShop, InstanceID: "inst-1"})
		require.NoError(t, err)

		assert.Empty(t, result.Deleted)
		assert.Equal(t, other, f.storefront.ScriptTags()[0].ID)
	})

	t.Run("same path on another host is left alone", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		vendor := f.storefront.AddScriptTag("https://cdn.other-vendor.io/api/embed/script?widget=42")
		nested := f.storefront.AddScriptTag(testAppURL + "/static/api/embed/script?instance_id=inst-1")

		result, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{Shop: testShop, InstanceID: "inst-1"})
		require.NoError(t, err)

		assert.Empty(t, result.Deleted)
		tags := f.storefront.ScriptTags()
		require.Len(t, tags, 3)
		assert.Equal(t, vendor, tags[0].ID)
		assert.Equal(t, nested, tags[1].ID)
	})

	t.Run("failed delete does not block the install", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1")
		f.storefront.FailOn(testutil.OpDeleteTag, "", errors.New("boom"))

		result, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{Shop: testShop, InstanceID: "inst-2"})
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Empty(t, result.Deleted)
		assert.Equal(t, []string{"delete", "create"}, f.metrics.TagChanges)
	})

	t.Run("create failure is an error", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.FailOn(testutil.OpCreateTag, "", &domain.RemoteError{Op: "POST script_tags", Status: 403, Body: "forbidden"})

		_, err := f.scriptTags.Install(ctx, application.InstallScriptTagInput{Shop: testShop, InstanceID: "inst-1"})
		var remote *domain.RemoteError
		assert.True(t, errors.As(err, &remote))
	})
}

func TestScriptTagService_Uninstall(t *testing.T) {
	ctx := context.Background()

	t.Run("single instance", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		one := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1")
		two := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-2")

		result, err := f.scriptTags.Uninstall(ctx, testShop, "inst-1", false)
		require.NoError(t, err)

		assert.True(t, result.OK)
		assert.Equal(t, []uint64{one}, result.Deleted)
		tags := f.storefront.ScriptTags()
		require.Len(t, tags, 1)
		assert.Equal(t, two, tags[0].ID)
	})

	t.Run("all", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1")
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-2")
		f.storefront.AddScriptTag("https://cdn.other-app.com/widget.js")
		f.storefront.AddScriptTag("https://cdn.other-vendor.io/api/embed/script?widget=42")

		result, err := f.scriptTags.Uninstall(ctx, testShop, "", true)
		require.NoError(t, err)

		assert.Len(t, result.Deleted, 2)
		assert.Len(t, f.storefront.ScriptTags(), 2)
	})

	t.Run("failures are reported per tag", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		id := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1")
		f.storefront.FailOn(testutil.OpDeleteTag, "1001", errors.New("boom"))

		result, err := f.scriptTags.Uninstall(ctx, testShop, "inst-1", false)
		require.NoError(t, err)

		assert.Equal(t, uint64(1001), id)
		assert.False(t, result.OK)
		assert.Equal(t, []domain.PlacementFailure{{Key: "1001", Reason: "boom"}}, result.Failed)
	})

	t.Run("instance required unless all", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)

		_, err := f.scriptTags.Uninstall(ctx, testShop, "", false)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestScriptTagService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("compact keys", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		id := f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1&p=i&br=12&ot=Try")

		status, err := f.scriptTags.Status(ctx, testShop, "inst-1")
		require.NoError(t, err)

		assert.True(t, status.Installed)
		assert.Equal(t, id, status.ScriptTagID)
		assert.False(t, status.ProductButton)
		assert.True(t, status.ProductImage)
		require.NotNil(t, status.ButtonRadius)
		assert.Equal(t, 12, *status.ButtonRadius)
		assert.Equal(t, "Try", *status.OverlayText)
		assert.Nil(t, status.ButtonText)
	})

	t.Run("legacy keys", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-1&product_button=1&btn_bg=" + url.QueryEscape("#222"))

		status, err := f.scriptTags.Status(ctx, testShop, "inst-1")
		require.NoError(t, err)

		assert.True(t, status.ProductButton)
		assert.Equal(t, "#222", *status.ButtonBg)
	})

	t.Run("not installed", func(t *testing.T) {
		f := newFixture(t)
		f.install(t)
		f.storefront.AddScriptTag(embedURL + "?instance_id=inst-2")

		status, err := f.scriptTags.Status(ctx, testShop, "inst-1")
		require.NoError(t, err)
		assert.False(t, status.Installed)
	})

	t.Run("unknown store reports not installed", func(t *testing.T) {
		f := newFixture(t)

		status, err := f.scriptTags.Status(ctx, testShop, "inst-1")
		require.NoError(t, err)
		assert.False(t, status.Installed)
	})
}
