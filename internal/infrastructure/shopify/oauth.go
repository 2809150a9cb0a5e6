package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sif-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type oauthProvider struct {
	apiKey string
	app    goshopify.App
	logger zerolog.Logger
}

// NewOAuthProvider creates the install handshake and HMAC verifier for an app
func NewOAuthProvider(apiKey, apiSecret string, logger zerolog.Logger) ports.OAuthProvider {
	return &oauthProvider{
		apiKey: apiKey,
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// AuthorizeURL builds the consent URL by hand: go-shopify's AuthorizeUrl reads
// the redirect URI from App, which is shared across requests here.
func (p *oauthProvider) AuthorizeURL(shop, state, redirectURI string, scopes []string) string {
	q := url.Values{}
	q.Set("client_id", p.apiKey)
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode())
}

func (p *oauthProvider) VerifyCallback(u *url.URL) bool {
	ok, err := p.app.VerifyAuthorizationURL(u)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to verify OAuth callback")
		return false
	}
	return ok
}

func (p *oauthProvider) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := p.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// VerifyWebhook checks the X-Shopify-Hmac-Sha256 header. The request body stays readable.
func (p *oauthProvider) VerifyWebhook(r *http.Request) bool {
	return p.app.VerifyWebhookRequest(r)
}
