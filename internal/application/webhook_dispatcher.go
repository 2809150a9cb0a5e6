package application

import (
	"context"
	"fmt"

	"sif-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes webhook events of the topics it accepts
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes webhook events to the registered handlers
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a dispatcher over handlers, tried in order
func NewWebhookDispatcher(logger zerolog.Logger, handlers ...WebhookHandler) *WebhookDispatcher {
	return &WebhookDispatcher{handlers: handlers, logger: logger}
}

// Dispatch runs every handler that accepts the event's topic. Topics nobody
// handles are acknowledged.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	handled := 0
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		if err := h.Handle(ctx, event); err != nil {
			return fmt.Errorf("failed to handle %s webhook: %w", event.Topic, err)
		}
		handled++
	}
	if handled == 0 {
		d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler for webhook topic")
	}
	return nil
}
