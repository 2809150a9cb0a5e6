package api

import (
	"bytes"
	"net/http"
	"text/template"

	"sif-shopify-layer/internal/domain"
)

// embedScript only exposes globals; placements are theme-managed, so the
// script tag never injects UI of its own.
var embedScript = template.Must(template.New("embed").Parse(`(function(){
  try {
    window.SIF_INSTANCE_ID = '{{ js .InstanceID }}';
    window.SIF_SHOP_DOMAIN = '{{ js .Shop }}' || window.location.hostname;
    window.SIF_CONFIG_URL = '{{ js .ConfigURL }}';
  } catch (e) {}
})();
`))

// HandleInstanceConfig serves the effective widget configuration to the storefront
func (h *Handler) HandleInstanceConfig(w http.ResponseWriter, r *http.Request) {
	shop, instanceID := r.URL.Query().Get("shop"), r.URL.Query().Get("instance_id")
	if shop == "" || instanceID == "" {
		writeError(w, http.StatusBadRequest, "Missing shop or instance_id")
		return
	}

	cfg, err := h.config.Resolve(r.Context(), shop, instanceID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load instance config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*domain.EffectiveConfig{"config": cfg})
}

// HandleEmbedScript serves the script registered through script tags
func (h *Handler) HandleEmbedScript(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var buf bytes.Buffer
	err := embedScript.Execute(&buf, struct {
		InstanceID string
		Shop       string
		ConfigURL  string
	}{
		InstanceID: q.Get("instance_id"),
		Shop:       q.Get("shop"),
		ConfigURL:  h.appURL + "/api/instances/config",
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render embed script")
		http.Error(w, "Failed to render script", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(buf.Bytes())
}
