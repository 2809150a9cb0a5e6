package api

import (
	"net/http"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Dependencies are the services the HTTP layer delegates to
type Dependencies struct {
	Auth       *application.AuthService
	Stores     *application.StoreService
	Accounts   *application.AccountService
	Config     *application.ConfigService
	Placements *application.PlacementService
	ScriptTags *application.ScriptTagService
	Webhooks   *application.WebhookDispatcher
	OAuth      ports.OAuthProvider
	Limiter    *application.RateLimiter
	Metrics    ports.Metrics
	Logger     zerolog.Logger
	AppURL     string
}

// Handler serves the app's REST endpoints
type Handler struct {
	auth       *application.AuthService
	stores     *application.StoreService
	accounts   *application.AccountService
	config     *application.ConfigService
	placements *application.PlacementService
	scriptTags *application.ScriptTagService
	webhooks   *application.WebhookDispatcher
	oauth      ports.OAuthProvider
	limiter    *application.RateLimiter
	metrics    ports.Metrics
	logger     zerolog.Logger
	validate   *validator.Validate
	appURL     string
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		auth:       deps.Auth,
		stores:     deps.Stores,
		accounts:   deps.Accounts,
		config:     deps.Config,
		placements: deps.Placements,
		scriptTags: deps.ScriptTags,
		webhooks:   deps.Webhooks,
		oauth:      deps.OAuth,
		limiter:    deps.Limiter,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		validate:   newValidator(),
		appURL:     deps.AppURL,
	}
}

// bind decodes and validates a JSON body, answering 400 on failure
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(w, r, target); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// bindQuery validates a struct filled from query parameters
func (h *Handler) bindQuery(w http.ResponseWriter, target any) bool {
	if err := h.validate.Struct(target); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// authorizeShop rejects requests whose session token was issued for another shop.
// Requests without a session token pass when the token middleware allows them.
func (h *Handler) authorizeShop(w http.ResponseWriter, r *http.Request, shop string) bool {
	sessionShop := domain.GetSessionShopFromContext(r.Context())
	if sessionShop != "" && sessionShop != shop {
		h.logger.Warn().Str("shop", shop).Str("sessionShop", sessionShop).Msg("Session token shop mismatch")
		writeError(w, http.StatusForbidden, "Session does not match shop")
		return false
	}
	return true
}

// allow counts a remote-mutating call against the store's window and answers 429 when exhausted
func (h *Handler) allow(w http.ResponseWriter, shop, route string) bool {
	err := h.limiter.AllowStore(shop)
	if err == nil {
		return true
	}
	h.metrics.RateLimited(route)
	h.logger.Warn().Str("shop", shop).Str("route", route).Msg("Rate limit exceeded")
	writeServiceError(w, h.logger, err, "Rate limit exceeded")
	return false
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
