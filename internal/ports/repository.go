package ports

import (
	"context"

	"sif-shopify-layer/internal/domain"
)

// StoreRepository persists installed stores and the webhooks they send
type StoreRepository interface {
	SaveStore(ctx context.Context, store *domain.Store) error
	GetStore(ctx context.Context, shopDomain string) (*domain.Store, error)
	DeleteStore(ctx context.Context, shopDomain string) error
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// AccountLinkRepository persists account↔store links keyed by (store, account).
// Lookups return (nil, nil) when nothing matches.
type AccountLinkRepository interface {
	GetByStoreAndAccount(ctx context.Context, storeDomain, accountID string) (*domain.AccountStoreLink, error)
	GetBySelectedInstance(ctx context.Context, storeDomain, instanceID string) (*domain.AccountStoreLink, error)
	GetActive(ctx context.Context, storeDomain string) (*domain.AccountStoreLink, error)
	DeactivateAll(ctx context.Context, storeDomain string) error
	Upsert(ctx context.Context, link *domain.AccountStoreLink) error
	// Update applies the set fields of update and reports whether a link matched
	Update(ctx context.Context, storeDomain, accountID string, update domain.LinkUpdate) (bool, error)
	DeleteByStore(ctx context.Context, storeDomain string) error
}

// InstanceRepository reads instances defined upstream
type InstanceRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Instance, error)
}

// PlacementRepository persists the last placement per store, feature and method
type PlacementRepository interface {
	SavePlacement(ctx context.Context, placement *domain.Placement) error
	GetPlacement(ctx context.Context, storeDomain string, feature domain.Feature, method domain.PlacementMethod) (*domain.Placement, error)
	ListPlacements(ctx context.Context, storeDomain string) ([]*domain.Placement, error)
	DeleteByStore(ctx context.Context, storeDomain string) error
}
