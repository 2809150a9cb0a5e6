package api

import (
	"errors"
	"net/http"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
)

// HandleAuth starts the install handshake
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if !application.ValidShopDomain(shop) {
		writeError(w, http.StatusBadRequest, "Missing or invalid shop param")
		return
	}

	authURL, err := h.auth.Begin(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to start OAuth")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleAuthCallback completes the handshake and returns the merchant to the app.
// Failures redirect with an error indicator instead of rendering an error page.
func (h *Handler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.auth.Callback(r.Context(), r.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.logger.Warn().Err(err).Str("shop", q.Get("shop")).Msg("Rejected OAuth callback")
		} else {
			h.logger.Error().Err(err).Str("shop", q.Get("shop")).Msg("OAuth callback failed")
		}
		http.Redirect(w, r, h.auth.ReturnURL(q.Get("shop"), q.Get("host"), err), http.StatusFound)
		return
	}

	h.logger.Info().Str("shop", result.Store.Domain).Msg("OAuth completed")
	http.Redirect(w, r, h.auth.ReturnURL(result.Store.Domain, result.Host, nil), http.StatusFound)
}
