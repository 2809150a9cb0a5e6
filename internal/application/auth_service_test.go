package application_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/infrastructure/cache"
	"sif-shopify-layer/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(f *fixture, oauth *testutil.OAuth) *application.AuthService {
	return application.NewAuthService(
		oauth,
		cache.NewInMemoryStateStore(),
		f.stores,
		zerolog.Nop(),
		testAppURL+"/",
		[]string{"read_themes", "write_themes"},
	)
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func callbackURL(shop, code, state string) *url.URL {
	q := url.Values{}
	q.Set("shop", shop)
	q.Set("code", code)
	q.Set("state", state)
	q.Set("host", "YWRtaW4=")
	return &url.URL{Path: "/auth/callback", RawQuery: q.Encode()}
}

func TestValidShopDomain(t *testing.T) {
	assert.True(t, application.ValidShopDomain("demo-store.myshopify.com"))
	assert.False(t, application.ValidShopDomain("demo.example.com"))
	assert.False(t, application.ValidShopDomain("-demo.myshopify.com"))
	assert.False(t, application.ValidShopDomain(""))
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("begin builds the consent url", func(t *testing.T) {
		f := newFixture(t)
		auth := newAuthService(f, &testutil.OAuth{})

		authURL, err := auth.Begin(ctx, testShop)
		require.NoError(t, err)

		u, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, testShop, u.Host)
		assert.Equal(t, testAppURL+"/auth/callback", u.Query().Get("redirect_uri"))
		assert.Equal(t, "read_themes,write_themes", u.Query().Get("scope"))
	})

	t.Run("begin rejects foreign domains", func(t *testing.T) {
		f := newFixture(t)
		auth := newAuthService(f, &testutil.OAuth{})

		_, err := auth.Begin(ctx, "evil.example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("callback installs the store", func(t *testing.T) {
		f := newFixture(t)
		oauth := &testutil.OAuth{CallbackValid: true, Token: testToken}
		auth := newAuthService(f, oauth)

		authURL, err := auth.Begin(ctx, testShop)
		require.NoError(t, err)

		result, err := auth.Callback(ctx, callbackURL(testShop, "code-1", stateFrom(t, authURL)))
		require.NoError(t, err)

		assert.Equal(t, "YWRtaW4=", result.Host)
		assert.Equal(t, []string{testShop + ":code-1"}, oauth.Exchanged)
		token, err := f.stores.AccessToken(ctx, testShop)
		require.NoError(t, err)
		assert.Equal(t, testToken, token)
		assert.Equal(t, []string{domain.TopicAppUninstalled + " " + testAppURL + "/webhooks"}, f.storefront.Webhooks())
	})

	t.Run("state is single use", func(t *testing.T) {
		f := newFixture(t)
		auth := newAuthService(f, &testutil.OAuth{CallbackValid: true, Token: testToken})

		authURL, err := auth.Begin(ctx, testShop)
		require.NoError(t, err)
		state := stateFrom(t, authURL)

		_, err = auth.Callback(ctx, callbackURL(testShop, "code-1", state))
		require.NoError(t, err)
		_, err = auth.Callback(ctx, callbackURL(testShop, "code-1", state))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("state bound to another shop", func(t *testing.T) {
		f := newFixture(t)
		oauth := &testutil.OAuth{CallbackValid: true, Token: testToken}
		auth := newAuthService(f, oauth)

		authURL, err := auth.Begin(ctx, "other.myshopify.com")
		require.NoError(t, err)

		_, err = auth.Callback(ctx, callbackURL(testShop, "code-1", stateFrom(t, authURL)))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, oauth.Exchanged)
	})

	t.Run("invalid hmac", func(t *testing.T) {
		f := newFixture(t)
		oauth := &testutil.OAuth{CallbackValid: false, Token: testToken}
		auth := newAuthService(f, oauth)

		authURL, err := auth.Begin(ctx, testShop)
		require.NoError(t, err)

		_, err = auth.Callback(ctx, callbackURL(testShop, "code-1", stateFrom(t, authURL)))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "invalid HMAC")
		assert.Empty(t, oauth.Exchanged)
	})

	t.Run("missing params", func(t *testing.T) {
		f := newFixture(t)
		auth := newAuthService(f, &testutil.OAuth{})

		_, err := auth.Callback(ctx, &url.URL{RawQuery: "shop=" + testShop})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("token exchange failure", func(t *testing.T) {
		f := newFixture(t)
		auth := newAuthService(f, &testutil.OAuth{CallbackValid: true, ExchangeErr: errors.New("denied")})

		authURL, err := auth.Begin(ctx, testShop)
		require.NoError(t, err)

		_, err = auth.Callback(ctx, callbackURL(testShop, "code-1", stateFrom(t, authURL)))
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
		_, err = f.stores.AccessToken(ctx, testShop)
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	})
}

func TestAuthService_ReturnURL(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f, &testutil.OAuth{})

	assert.Equal(t, testAppURL+"/?host=h&shop="+testShop, auth.ReturnURL(testShop, "h", nil))

	u, err := url.Parse(auth.ReturnURL(testShop, "", errors.New("boom")))
	require.NoError(t, err)
	assert.Equal(t, "shopify_auth_failed", u.Query().Get("error"))
	assert.Equal(t, "boom", u.Query().Get("error_message"))
}
