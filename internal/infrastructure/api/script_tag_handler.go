package api

import (
	"net/http"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
)

type installScriptTagRequest struct {
	Shop               string `json:"shop" validate:"required,shopdomain"`
	InstanceID         string `json:"instance_id" validate:"required,max=128"`
	ProductButton      bool   `json:"product_button"`
	ProductImageButton bool   `json:"product_image_button"`
	application.StyleOverrides
}

type deleteScriptTagRequest struct {
	Shop       string `json:"shop" validate:"required,shopdomain"`
	InstanceID string `json:"instance_id" validate:"required_without=All"`
	All        bool   `json:"all"`
}

// HandleScriptTagStatus reports whether the instance's script tag is installed
func (h *Handler) HandleScriptTagStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop, instanceID := q.Get("shop"), q.Get("instance_id")
	if shop == "" || instanceID == "" {
		writeError(w, http.StatusBadRequest, "Missing shop or instance_id")
		return
	}
	if !h.authorizeShop(w, r, shop) {
		return
	}

	status, err := h.scriptTags.Status(r.Context(), shop, instanceID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to check script tag")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleInstallScriptTag replaces the store's app script tag
func (h *Handler) HandleInstallScriptTag(w http.ResponseWriter, r *http.Request) {
	var req installScriptTagRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) || !h.allow(w, req.Shop, "script-tag") {
		return
	}

	result, err := h.scriptTags.Install(r.Context(), application.InstallScriptTagInput{
		Shop:       req.Shop,
		InstanceID: req.InstanceID,
		Placements: domain.Placements{
			ProductButton: req.ProductButton,
			ProductImage:  req.ProductImageButton,
		},
		Styles: req.StyleOverrides,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to install script tag")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleDeleteScriptTag removes the instance's script tags, or all app tags
func (h *Handler) HandleDeleteScriptTag(w http.ResponseWriter, r *http.Request) {
	var req deleteScriptTagRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) || !h.allow(w, req.Shop, "script-tag") {
		return
	}

	result, err := h.scriptTags.Uninstall(r.Context(), req.Shop, req.InstanceID, req.All)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete script tag")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
