package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"sif-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

// StoreUninstaller removes a store and everything recorded for it
type StoreUninstaller interface {
	Uninstall(ctx context.Context, shop string) error
}

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	logger zerolog.Logger
	stores StoreUninstaller
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, stores StoreUninstaller) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger: logger,
		stores: stores,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled
}

// Handle deletes the store, its account links, its placement records and its cached config.
// Theme files are left as they are: the access token is already revoked.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		h.logger.Warn().Str("topic", event.Topic).Msg("App uninstalled webhook without shop domain")
		return nil
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shopDomain).
		Msg("Processing app uninstalled webhook event")

	if err := h.stores.Uninstall(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to uninstall store: %w", err)
	}

	h.logger.Info().Str("shop", shopDomain).Msg("App uninstalled - cleanup completed")
	return nil
}
