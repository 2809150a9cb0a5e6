package api

import (
	"encoding/json"
	"net/http"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
)

type connectRequest struct {
	Shop      string `json:"shop" validate:"required,shopdomain"`
	AccountID string `json:"account_id" validate:"required,max=128"`
}

type shopAccountQuery struct {
	Shop      string `json:"shop" validate:"required,shopdomain"`
	AccountID string `json:"account_id" validate:"required"`
}

// optionalString tells an absent key from an explicit null
type optionalString struct {
	set   bool
	value string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = ""
		return nil
	}
	return json.Unmarshal(b, &o.value)
}

// uiStateRequest accepts structured configs and the flat fields older admin builds send
type uiStateRequest struct {
	Shop               string                `json:"shop" validate:"required,shopdomain"`
	AccountID          string                `json:"account_id" validate:"required,max=128"`
	SelectedInstanceID optionalString        `json:"selected_instance_id"`
	EnableButton       *bool                 `json:"enable_button"`
	EnableOverlay      *bool                 `json:"enable_overlay"`
	ButtonConfig       *domain.ButtonConfig  `json:"button_config"`
	OverlayConfig      *domain.OverlayConfig `json:"overlay_config"`
	ButtonText         *string               `json:"btn_text"`
	ButtonBg           *string               `json:"btn_bg"`
	ButtonColor        *string               `json:"btn_color"`
	ButtonRadius       *int                  `json:"btn_radius"`
	OverlayText        *string               `json:"overlay_text"`
	OverlayBg          *string               `json:"overlay_bg"`
	OverlayColor       *string               `json:"overlay_color"`
}

func (req *uiStateRequest) linkUpdate() domain.LinkUpdate {
	u := domain.LinkUpdate{
		EnableButton:  req.EnableButton,
		EnableOverlay: req.EnableOverlay,
		Button: domain.ResolveButtonConfig(req.ButtonConfig, domain.LegacyButtonFields{
			Text: req.ButtonText, Bg: req.ButtonBg, Color: req.ButtonColor, Radius: req.ButtonRadius,
		}),
		Overlay: domain.ResolveOverlayConfig(req.OverlayConfig, domain.LegacyOverlayFields{
			Text: req.OverlayText, Bg: req.OverlayBg, Color: req.OverlayColor,
		}),
	}
	if req.SelectedInstanceID.set {
		v := req.SelectedInstanceID.value
		u.SelectedInstanceID = &v
	}
	return u
}

// HandleConnect makes an account the store's active link
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) {
		return
	}

	if err := h.accounts.Connect(r.Context(), req.Shop, req.AccountID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to connect account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "success": true})
}

// HandleActiveAccount reports the account the store is connected to
func (h *Handler) HandleActiveAccount(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "Missing shop")
		return
	}
	if !h.authorizeShop(w, r, shop) {
		return
	}

	active, err := h.accounts.Active(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.logger, err, "Lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, active)
}

// HandleListInstances lists an account's instances, newest first
func (h *Handler) HandleListInstances(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "Missing account_id")
		return
	}

	instances, err := h.accounts.ListInstances(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch instances")
		return
	}
	if instances == nil {
		instances = []*domain.Instance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": instances})
}

// HandleGetUIState returns the admin UI state, or null when the store has no link
func (h *Handler) HandleGetUIState(w http.ResponseWriter, r *http.Request) {
	q := shopAccountQuery{Shop: r.URL.Query().Get("shop"), AccountID: r.URL.Query().Get("account_id")}
	if !h.bindQuery(w, &q) || !h.authorizeShop(w, r, q.Shop) {
		return
	}

	state, err := h.accounts.GetUIState(r.Context(), q.Shop, q.AccountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load ui-state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*application.UIState{"state": state})
}

// HandleSaveUIState writes the fields present in the body
func (h *Handler) HandleSaveUIState(w http.ResponseWriter, r *http.Request) {
	var req uiStateRequest
	if !h.bind(w, r, &req) || !h.authorizeShop(w, r, req.Shop) {
		return
	}

	result, err := h.accounts.SaveUIState(r.Context(), req.Shop, req.AccountID, req.linkUpdate())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to save ui-state")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*application.SaveUIStateResult
	}{OK: true, SaveUIStateResult: result})
}
