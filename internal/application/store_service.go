package application

import (
	"context"
	"fmt"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// StoreService manages installed stores and their access tokens
type StoreService struct {
	repository     ports.StoreRepository
	links          ports.AccountLinkRepository
	placements     ports.PlacementRepository
	cache          ports.ConfigCache
	encryptionSvc  ports.EncryptionService
	client         ports.StorefrontClient
	logger         zerolog.Logger
	webhookAddress string
}

// NewStoreService creates a new store service
func NewStoreService(
	repository ports.StoreRepository,
	links ports.AccountLinkRepository,
	placements ports.PlacementRepository,
	cache ports.ConfigCache,
	encryptionSvc ports.EncryptionService,
	client ports.StorefrontClient,
	logger zerolog.Logger,
	webhookAddress string,
) *StoreService {
	return &StoreService{
		repository:     repository,
		links:          links,
		placements:     placements,
		cache:          cache,
		encryptionSvc:  encryptionSvc,
		client:         client,
		logger:         logger,
		webhookAddress: webhookAddress,
	}
}

// Install records a store after a successful token exchange
func (s *StoreService) Install(ctx context.Context, shop string, accessToken string, scopes []string) (*domain.Store, error) {
	shopInfo, err := s.client.GetShop(ctx, shop, accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to get shop info")
		return nil, fmt.Errorf("failed to get shop info: %w", err)
	}

	encryptedToken, err := s.encryptionSvc.Encrypt(accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to encrypt access token")
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	store := &domain.Store{
		Domain:      shop,
		AccessToken: encryptedToken,
		Name:        shopInfo.Name,
		Email:       shopInfo.Email,
		Scopes:      scopes,
		InstalledAt: time.Now(),
	}
	if err := s.repository.SaveStore(ctx, store); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save store")
		return nil, fmt.Errorf("failed to save store: %w", err)
	}

	if s.webhookAddress != "" {
		if err := s.client.CreateWebhook(ctx, shop, accessToken, domain.TopicAppUninstalled, s.webhookAddress); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to register uninstall webhook")
		}
	}

	s.logger.Info().Str("shop", shop).Strs("scopes", scopes).Msg("Store installed")
	return store, nil
}

// GetStore returns the store with its access token decrypted
func (s *StoreService) GetStore(ctx context.Context, shop string) (*domain.Store, error) {
	store, err := s.repository.GetStore(ctx, shop)
	if err != nil {
		return nil, err
	}
	if store == nil || store.AccessToken == "" {
		return nil, domain.ErrStoreNotFound
	}

	token, err := s.encryptionSvc.Decrypt(store.AccessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to decrypt access token")
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	store.AccessToken = token
	return store, nil
}

// AccessToken returns the decrypted token of an installed store
func (s *StoreService) AccessToken(ctx context.Context, shop string) (string, error) {
	store, err := s.GetStore(ctx, shop)
	if err != nil {
		return "", err
	}
	return store.AccessToken, nil
}

// ListThemes lists the store's themes
func (s *StoreService) ListThemes(ctx context.Context, shop string) ([]domain.Theme, error) {
	token, err := s.AccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	return s.client.ListThemes(ctx, shop, token)
}

// ListProducts lists the store's products for the admin UI
func (s *StoreService) ListProducts(ctx context.Context, shop string, limit int) ([]domain.Product, error) {
	token, err := s.AccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	return s.client.ListProducts(ctx, shop, token, limit)
}

// Uninstall deletes a store with its links and placement records
func (s *StoreService) Uninstall(ctx context.Context, shop string) error {
	if err := s.links.DeleteByStore(ctx, shop); err != nil {
		return fmt.Errorf("failed to delete account links: %w", err)
	}
	if err := s.placements.DeleteByStore(ctx, shop); err != nil {
		return fmt.Errorf("failed to delete placements: %w", err)
	}
	if err := s.repository.DeleteStore(ctx, shop); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	if err := s.cache.Invalidate(ctx, shop); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to invalidate config cache")
	}

	s.logger.Info().Str("shop", shop).Msg("Store uninstalled")
	return nil
}

// ProcessWebhook logs a received webhook
func (s *StoreService) ProcessWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	if err := s.repository.LogWebhook(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to log webhook")
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	s.logger.Info().Str("topic", event.Topic).Str("shop", event.Shop).Bool("verified", event.Verified).Msg("Webhook processed")
	return nil
}
