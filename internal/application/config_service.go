package application

import (
	"context"
	"fmt"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ConfigService resolves the widget configuration read by the storefront
type ConfigService struct {
	stores  ports.StoreRepository
	links   ports.AccountLinkRepository
	cache   ports.ConfigCache
	metrics ports.Metrics
	logger  zerolog.Logger
}

// NewConfigService creates a new config service
func NewConfigService(
	stores ports.StoreRepository,
	links ports.AccountLinkRepository,
	cache ports.ConfigCache,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *ConfigService {
	return &ConfigService{
		stores:  stores,
		links:   links,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve returns the effective configuration for an instance on a store.
// The link that selected the instance wins, else the store's active link.
// A nil config without error means the store or instance is not configured.
func (s *ConfigService) Resolve(ctx context.Context, shop, instanceID string) (*domain.EffectiveConfig, error) {
	if cfg, hit, err := s.cache.Get(ctx, shop, instanceID); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Config cache read failed")
	} else if hit {
		s.metrics.ConfigLookup(true)
		return cfg, nil
	}
	s.metrics.ConfigLookup(false)

	cfg, err := s.resolve(ctx, shop, instanceID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, shop, instanceID, cfg); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Config cache write failed")
	}
	return cfg, nil
}

func (s *ConfigService) resolve(ctx context.Context, shop, instanceID string) (*domain.EffectiveConfig, error) {
	store, err := s.stores.GetStore(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, nil
	}

	var link *domain.AccountStoreLink
	if instanceID != "" {
		link, err = s.links.GetBySelectedInstance(ctx, shop, instanceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get link for instance: %w", err)
		}
	}
	if link == nil {
		link, err = s.links.GetActive(ctx, shop)
		if err != nil {
			return nil, fmt.Errorf("failed to get active link: %w", err)
		}
	}
	return domain.EffectiveConfigFromLink(link), nil
}

// Invalidate drops every cached configuration of a store
func (s *ConfigService) Invalidate(ctx context.Context, shop string) {
	if err := s.cache.Invalidate(ctx, shop); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to invalidate config cache")
	}
}
