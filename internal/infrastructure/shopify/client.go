package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the admin API version used when none is configured
const DefaultAPIVersion = "2025-01"

type client struct {
	app        goshopify.App
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures the client adapter
type Option func(*client)

// WithAPIVersion pins the admin API version
func WithAPIVersion(version string) Option {
	return func(c *client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithHTTPClient replaces the HTTP client used for admin API calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new storefront client adapter. Calls are never retried.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger, opts ...Option) ports.StorefrontClient {
	c := &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		apiVersion: DefaultAPIVersion,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithVersion(c.apiVersion)}
	if c.httpClient != nil {
		opts = append(opts, goshopify.WithHTTPClient(c.httpClient))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Shop API

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*domain.ShopInfo, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, remoteError("shop get", err)
	}
	return &domain.ShopInfo{
		ID:     shop.Id,
		Name:   shop.Name,
		Email:  shop.Email,
		Domain: shop.Domain,
	}, nil
}

// Product API

func (c *client) ListProducts(ctx context.Context, shopDomain string, accessToken string, limit int) ([]domain.Product, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, goshopify.ListOptions{Limit: limit})
	if err != nil {
		return nil, remoteError("product list", err)
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		product := domain.Product{
			ID:     p.Id,
			Title:  p.Title,
			Handle: p.Handle,
			Status: string(p.Status),
		}
		if len(p.Images) > 0 {
			product.Image = p.Images[0].Src
		}
		out = append(out, product)
	}
	return out, nil
}

// Theme API

func (c *client) ListThemes(ctx context.Context, shopDomain string, accessToken string) ([]domain.Theme, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	themes, err := client.Theme.List(ctx, nil)
	if err != nil {
		return nil, remoteError("theme list", err)
	}
	out := make([]domain.Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, domain.Theme{ID: t.Id, Name: t.Name, Role: t.Role})
	}
	return out, nil
}

func (c *client) ListAssetKeys(ctx context.Context, shopDomain string, accessToken string, themeID uint64) ([]string, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	assets, err := client.Asset.List(ctx, themeID, nil)
	if err != nil {
		return nil, remoteError("asset list", err)
	}
	keys := make([]string, 0, len(assets))
	for _, a := range assets {
		keys = append(keys, a.Key)
	}
	return keys, nil
}

func (c *client) GetAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, key string) (string, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return "", err
	}
	asset, err := client.Asset.Get(ctx, themeID, key)
	if err != nil {
		return "", remoteError("asset get "+key, err)
	}
	return asset.Value, nil
}

func (c *client) PutAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, key string, value string) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if _, err := client.Asset.Update(ctx, themeID, goshopify.Asset{Key: key, Value: value}); err != nil {
		return remoteError("asset put "+key, err)
	}
	c.logger.Debug().Str("shop", shopDomain).Uint64("themeId", themeID).Str("key", key).Msg("Asset written")
	return nil
}

func (c *client) DeleteAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, key string) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if err := client.Asset.Delete(ctx, themeID, key); err != nil {
		if err := remoteError("asset delete "+key, err); !domain.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// ScriptTag API

func (c *client) ListScriptTags(ctx context.Context, shopDomain string, accessToken string) ([]domain.ScriptTag, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	tags, err := client.ScriptTag.List(ctx, nil)
	if err != nil {
		return nil, remoteError("script tag list", err)
	}
	out := make([]domain.ScriptTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, scriptTagFromShopify(t))
	}
	return out, nil
}

func (c *client) CreateScriptTag(ctx context.Context, shopDomain string, accessToken string, tag domain.ScriptTag) (*domain.ScriptTag, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := client.ScriptTag.Create(ctx, goshopify.ScriptTag{
		Src:          tag.Src,
		Event:        tag.Event,
		DisplayScope: tag.DisplayScope,
	})
	if err != nil {
		return nil, remoteError("script tag create", err)
	}
	out := scriptTagFromShopify(*created)
	return &out, nil
}

func (c *client) DeleteScriptTag(ctx context.Context, shopDomain string, accessToken string, id uint64) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if err := client.ScriptTag.Delete(ctx, id); err != nil {
		if err := remoteError("script tag delete", err); !domain.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// Webhook API

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	_, err = client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return remoteError("webhook create", err)
	}
	return nil
}

func scriptTagFromShopify(t goshopify.ScriptTag) domain.ScriptTag {
	return domain.ScriptTag{
		ID:           t.Id,
		Src:          t.Src,
		Event:        t.Event,
		DisplayScope: t.DisplayScope,
	}
}

// remoteError converts go-shopify response errors into domain.RemoteError so
// callers can tell a missing resource from a failed call
func remoteError(op string, err error) error {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.RemoteError{Op: op, Status: http.StatusTooManyRequests, Body: rateErr.Message}
	}
	var rateErrPtr *goshopify.RateLimitError
	if errors.As(err, &rateErrPtr) {
		return &domain.RemoteError{Op: op, Status: http.StatusTooManyRequests, Body: rateErrPtr.Message}
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return &domain.RemoteError{Op: op, Status: respErr.Status, Body: respErr.Error()}
	}
	var respErrPtr *goshopify.ResponseError
	if errors.As(err, &respErrPtr) {
		return &domain.RemoteError{Op: op, Status: respErrPtr.Status, Body: respErrPtr.Error()}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
