package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/application/webhook_handlers"
	apiinfra "sif-shopify-layer/internal/infrastructure/api"
	"sif-shopify-layer/internal/infrastructure/cache"
	"sif-shopify-layer/internal/infrastructure/config"
	"sif-shopify-layer/internal/infrastructure/encryption"
	"sif-shopify-layer/internal/infrastructure/metrics"
	securitymiddleware "sif-shopify-layer/internal/infrastructure/middleware"
	"sif-shopify-layer/internal/infrastructure/repository"
	shopifyinfra "sif-shopify-layer/internal/infrastructure/shopify"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	// Config cache and OAuth state live in Redis when configured
	var (
		configCache ports.ConfigCache = cache.NewInMemoryConfigCache(cfg.Cache.ConfigTTL)
		stateStore  ports.StateStore  = cache.NewInMemoryStateStore()
	)
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		} else {
			defer redisClient.Close()
			configCache = cache.NewRedisConfigCache(redisClient, cfg.Cache.ConfigTTL, logger)
			stateStore = cache.NewRedisStateStore(redisClient)
			logger.Info().Msg("Using Redis for config cache and OAuth state")
		}
	}

	encryptionService, err := encryption.NewService(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Initialize repositories
	storeRepo := repository.NewMongoRepository(db)
	linkRepo := repository.NewMongoAccountLinkRepository(db)
	instanceRepo := repository.NewMongoInstanceRepository(db)
	placementRepo := repository.NewMongoPlacementRepository(db)

	storefront := shopifyinfra.NewClient(
		cfg.Shopify.APIKey,
		cfg.Shopify.APISecret,
		logger,
		shopifyinfra.WithAPIVersion(cfg.Shopify.APIVersion),
	)
	oauthProvider := shopifyinfra.NewOAuthProvider(cfg.Shopify.APIKey, cfg.Shopify.APISecret, logger)
	collector := metrics.NewCollector()

	// Initialize application services
	storeService := application.NewStoreService(
		storeRepo,
		linkRepo,
		placementRepo,
		configCache,
		encryptionService,
		storefront,
		logger,
		cfg.App.URL+"/webhooks",
	)
	placementService := application.NewPlacementService(storeService, storefront, placementRepo, collector, logger)
	scriptTagService := application.NewScriptTagService(storeService, storefront, placementRepo, collector, logger, cfg.App.URL)
	configService := application.NewConfigService(storeRepo, linkRepo, configCache, collector, logger)
	accountService := application.NewAccountService(
		storeRepo,
		linkRepo,
		instanceRepo,
		configService,
		placementService,
		scriptTagService,
		logger,
	)
	authService := application.NewAuthService(
		oauthProvider,
		stateStore,
		storeService,
		logger,
		cfg.App.URL,
		cfg.Shopify.Scopes,
	)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(
		logger,
		webhook_handlers.NewAppUninstalledHandler(logger, storeService),
	)

	handler := apiinfra.NewHandler(apiinfra.Dependencies{
		Auth:       authService,
		Stores:     storeService,
		Accounts:   accountService,
		Config:     configService,
		Placements: placementService,
		ScriptTags: scriptTagService,
		Webhooks:   webhookDispatcher,
		OAuth:      oauthProvider,
		Limiter:    application.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max),
		Metrics:    collector,
		Logger:     logger,
		AppURL:     cfg.App.URL,
	})

	router := apiinfra.NewRouter(handler, apiinfra.RouterConfig{
		Metrics:               collector,
		SessionVerifier:       securitymiddleware.NewSessionTokenVerifier(cfg.Shopify.APIKey, cfg.Shopify.APISecret),
		SessionTokensRequired: cfg.Security.SessionTokensRequired,
		FrameAncestors:        cfg.Security.FrameAncestors,
		SwaggerFile:           "./docs/swagger.json",
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	logger.Info().Str("port", cfg.App.Port).Str("appUrl", cfg.App.URL).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.App.Port + "/swagger/index.html")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}
