package api

import (
	"net/http"
	"strconv"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
)

type productImageRequest struct {
	Shop          string                `json:"shop" validate:"required,shopdomain"`
	ThemeID       themeID               `json:"theme_id"`
	InstanceID    string                `json:"instance_id" validate:"max=128"`
	Enable        *bool                 `json:"enable"`
	EnableOverlay *bool                 `json:"enable_overlay"`
	Overlay       *domain.OverlayConfig `json:"overlay"`
	OverlayText   *string               `json:"overlay_text"`
	OverlayBg     *string               `json:"overlay_bg"`
	OverlayColor  *string               `json:"overlay_color"`
	OverlayPos    *string               `json:"overlay_position"`
}

// enabled defaults to true; older clients send enable_overlay
func (req *productImageRequest) enabled() bool {
	if req.Enable != nil {
		return *req.Enable
	}
	if req.EnableOverlay != nil {
		return *req.EnableOverlay
	}
	return true
}

type autoAddRequest struct {
	Shop        string  `json:"shop" validate:"required,shopdomain"`
	ThemeID     themeID `json:"theme_id"`
	InstanceID  string  `json:"instance_id" validate:"max=128"`
	ButtonLabel string  `json:"button_label" validate:"max=80"`
}

type themeRemoveRequest struct {
	Shop          string  `json:"shop" validate:"required,shopdomain"`
	ThemeID       themeID `json:"theme_id"`
	RemoveButton  *bool   `json:"remove_button"`
	RemoveOverlay *bool   `json:"remove_overlay"`
}

// HandleListThemes lists the store's themes
func (h *Handler) HandleListThemes(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "Missing shop")
		return
	}
	if !h.authorizeShop(w, r, shop) {
		return
	}

	themes, err := h.stores.ListThemes(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list themes")
		return
	}
	if themes == nil {
		themes = []domain.Theme{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "themes": themes})
}

// HandleListProducts lists the store's products
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "Missing shop")
		return
	}
	if !h.authorizeShop(w, r, shop) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.stores.ListProducts(r.Context(), shop, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// HandleProductImage enables or disables the product image overlay in a theme
func (h *Handler) HandleProductImage(w http.ResponseWriter, r *http.Request) {
	var req productImageRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) || !h.allow(w, req.Shop, "product-image") {
		return
	}
	ctx := r.Context()

	var (
		result *domain.PlacementResult
		err    error
	)
	if req.enabled() {
		if req.InstanceID == "" {
			writeError(w, http.StatusBadRequest, "Missing instance_id")
			return
		}
		result, err = h.placements.EnableOverlay(ctx, application.EnableOverlayInput{
			Shop:       req.Shop,
			ThemeID:    uint64(req.ThemeID),
			InstanceID: req.InstanceID,
			Overlay: domain.ResolveOverlayConfig(req.Overlay, domain.LegacyOverlayFields{
				Text: req.OverlayText, Bg: req.OverlayBg, Color: req.OverlayColor, Position: req.OverlayPos,
			}),
		})
	} else {
		result, err = h.placements.DisableOverlay(ctx, application.DisableOverlayInput{
			Shop:    req.Shop,
			ThemeID: uint64(req.ThemeID),
		})
	}
	if err != nil {
		writeServiceError(w, h.logger, err, "product-image injection failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleAutoAdd inserts the button app block into the product template
func (h *Handler) HandleAutoAdd(w http.ResponseWriter, r *http.Request) {
	var req autoAddRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) || !h.allow(w, req.Shop, "auto-add") {
		return
	}

	result, err := h.placements.InsertButtonBlock(r.Context(), application.ButtonBlockInput{
		Shop:       req.Shop,
		ThemeID:    uint64(req.ThemeID),
		InstanceID: req.InstanceID,
		Label:      req.ButtonLabel,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "auto-add failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleThemeRemove strips app placements from a theme
func (h *Handler) HandleThemeRemove(w http.ResponseWriter, r *http.Request) {
	var req themeRemoveRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) || !h.allow(w, req.Shop, "theme-remove") {
		return
	}

	in := application.RemovePlacementsInput{
		Shop:          req.Shop,
		ThemeID:       uint64(req.ThemeID),
		RemoveButton:  false,
		RemoveOverlay: true,
	}
	if req.RemoveButton != nil {
		in.RemoveButton = *req.RemoveButton
	}
	if req.RemoveOverlay != nil {
		in.RemoveOverlay = *req.RemoveOverlay
	}

	result, err := h.placements.RemovePlacements(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "Theme remove failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleListPlacements returns the recorded placements of a store
func (h *Handler) HandleListPlacements(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "Missing shop")
		return
	}
	if !h.authorizeShop(w, r, shop) {
		return
	}

	placements, err := h.placements.ListPlacements(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list placements")
		return
	}
	if placements == nil {
		placements = []*domain.Placement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "placements": placements})
}
