package ports

import (
	"context"
	"net/http"
	"net/url"

	"sif-shopify-layer/internal/domain"
)

// StorefrontClient defines the platform admin API operations the app performs.
// Each method issues a single authenticated call and never retries.
type StorefrontClient interface {
	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*domain.ShopInfo, error)

	// Product API
	ListProducts(ctx context.Context, shop string, accessToken string, limit int) ([]domain.Product, error)

	// Theme API
	ListThemes(ctx context.Context, shop string, accessToken string) ([]domain.Theme, error)
	ListAssetKeys(ctx context.Context, shop string, accessToken string, themeID uint64) ([]string, error)
	// GetAsset returns domain.ErrAssetNotFound (wrapped) when the key does not exist
	GetAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string) (string, error)
	PutAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string, value string) error
	// DeleteAsset treats a missing asset as success
	DeleteAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string) error

	// ScriptTag API
	ListScriptTags(ctx context.Context, shop string, accessToken string) ([]domain.ScriptTag, error)
	CreateScriptTag(ctx context.Context, shop string, accessToken string, tag domain.ScriptTag) (*domain.ScriptTag, error)
	// DeleteScriptTag treats a missing tag as success
	DeleteScriptTag(ctx context.Context, shop string, accessToken string, id uint64) error

	// Webhook API
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error
}

// OAuthProvider performs the install handshake and request signature checks
type OAuthProvider interface {
	AuthorizeURL(shop, state, redirectURI string, scopes []string) string
	VerifyCallback(u *url.URL) bool
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)
	VerifyWebhook(r *http.Request) bool
}
