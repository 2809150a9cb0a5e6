package api

import (
	"bytes"
	"io"
	"net/http"

	"sif-shopify-layer/internal/domain"
)

// HandleWebhook verifies, logs and dispatches a platform webhook
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	if !h.oauth.VerifyWebhook(r) {
		h.logger.Warn().Str("topic", r.Header.Get("X-Shopify-Topic")).Msg("Webhook signature verification failed")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		writeError(w, http.StatusBadRequest, "Missing X-Shopify-Topic header")
		return
	}

	event := &domain.WebhookEvent{
		ID:       r.Header.Get("X-Shopify-Webhook-Id"),
		Topic:    topic,
		Shop:     r.Header.Get("X-Shopify-Shop-Domain"),
		Payload:  payload,
		Verified: true,
	}

	ctx := r.Context()
	if err := h.stores.ProcessWebhook(ctx, event); err != nil {
		h.logger.Error().Err(err).Msg("Failed to log webhook event")
	}

	if err := h.webhooks.Dispatch(ctx, event); err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("shop", event.Shop).
			Msg("Failed to dispatch webhook event")

		// 500 makes the platform retry the delivery
		writeError(w, http.StatusInternalServerError, "Failed to process webhook event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
