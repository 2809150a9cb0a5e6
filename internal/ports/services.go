package ports

import (
	"context"
	"time"

	"sif-shopify-layer/internal/domain"
)

// EncryptionService seals access tokens at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ConfigCache holds resolved widget configuration. A hit may carry a nil config,
// meaning the store or instance is not configured.
type ConfigCache interface {
	Get(ctx context.Context, shop, instanceID string) (cfg *domain.EffectiveConfig, hit bool, err error)
	Set(ctx context.Context, shop, instanceID string, cfg *domain.EffectiveConfig) error
	Invalidate(ctx context.Context, shop string) error
}

// StateStore keeps OAuth state nonces between the redirect and the callback
type StateStore interface {
	Save(ctx context.Context, state, shop string, ttl time.Duration) error
	// Consume returns the shop bound to state and forgets it; "" when unknown or expired
	Consume(ctx context.Context, state string) (string, error)
}

// Metrics records operational counters
type Metrics interface {
	PlacementCompleted(feature domain.Feature, operation, status string)
	AssetWritten(operation string, err error)
	ScriptTagChanged(operation string, err error)
	RateLimited(route string)
	ConfigLookup(cacheHit bool)
}
