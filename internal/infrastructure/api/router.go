package api

import (
	"net/http"

	"sif-shopify-layer/internal/infrastructure/metrics"
	securitymiddleware "sif-shopify-layer/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the cross-cutting pieces of the router
type RouterConfig struct {
	Metrics               *metrics.Collector
	SessionVerifier       *securitymiddleware.SessionTokenVerifier
	SessionTokensRequired bool
	FrameAncestors        string
	SwaggerFile           string
}

// NewRouter mounts every endpoint of the app
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware(cfg.FrameAncestors))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Public routes
	r.Get("/health", h.HandleHealth)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	if cfg.SwaggerFile != "" {
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, cfg.SwaggerFile)
		})
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// OAuth and webhooks prove themselves with the app secret
	r.Get("/auth", h.HandleAuth)
	r.Get("/auth/callback", h.HandleAuthCallback)
	r.Post("/webhooks", h.HandleWebhook)

	// Called from storefront pages on any shop domain
	r.Group(func(storefront chi.Router) {
		storefront.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		storefront.Get("/api/instances/config", h.HandleInstanceConfig)
		storefront.Get("/api/embed/script", h.HandleEmbedScript)
	})

	// Embedded admin
	r.Group(func(admin chi.Router) {
		if cfg.SessionVerifier != nil {
			admin.Use(securitymiddleware.SessionTokenMiddleware(cfg.SessionVerifier, cfg.SessionTokensRequired, h.logger))
		}

		admin.Get("/api/accounts/ui-state", h.HandleGetUIState)
		admin.Post("/api/accounts/ui-state", h.HandleSaveUIState)
		admin.Post("/api/accounts/connect", h.HandleConnect)
		admin.Get("/api/accounts/active", h.HandleActiveAccount)

		admin.Get("/api/instances", h.HandleListInstances)
		admin.Get("/api/products", h.HandleListProducts)
		admin.Get("/api/shopify/themes", h.HandleListThemes)
		admin.Get("/api/shopify/placements", h.HandleListPlacements)

		admin.Post("/api/shopify/theme-inject/product-image", h.HandleProductImage)
		admin.Post("/api/shopify/theme-inject/auto-add", h.HandleAutoAdd)
		admin.Post("/api/shopify/theme-remove", h.HandleThemeRemove)

		admin.Get("/api/shopify/script-tag", h.HandleScriptTagStatus)
		admin.Post("/api/shopify/script-tag", h.HandleInstallScriptTag)
		admin.Delete("/api/shopify/script-tag", h.HandleDeleteScriptTag)
	})

	return r
}
