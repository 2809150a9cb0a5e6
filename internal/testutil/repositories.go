package testutil

import (
	"context"
	"sync"
	"time"

	"sif-shopify-layer/internal/domain"
)

// StoreRepository is an in-memory ports.StoreRepository
type StoreRepository struct {
	mu       sync.Mutex
	stores   map[string]domain.Store
	Webhooks []*domain.WebhookEvent
	Err      error
}

// NewStoreRepository creates an empty store repository
func NewStoreRepository() *StoreRepository {
	return &StoreRepository{stores: make(map[string]domain.Store)}
}

func (r *StoreRepository) SaveStore(ctx context.Context, store *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	store.UpdatedAt = time.Now()
	r.stores[store.Domain] = *store
	return nil
}

func (r *StoreRepository) GetStore(ctx context.Context, shopDomain string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.stores[shopDomain]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *StoreRepository) DeleteStore(ctx context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, shopDomain)
	return nil
}

func (r *StoreRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Webhooks = append(r.Webhooks, event)
	return nil
}

// AccountLinkRepository is an in-memory ports.AccountLinkRepository
type AccountLinkRepository struct {
	mu    sync.Mutex
	links []*domain.AccountStoreLink
}

// NewAccountLinkRepository creates an empty link repository
func NewAccountLinkRepository() *AccountLinkRepository {
	return &AccountLinkRepository{}
}

// Links returns copies of the links of a store
func (r *AccountLinkRepository) Links(storeDomain string) []domain.AccountStoreLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AccountStoreLink
	for _, l := range r.links {
		if l.StoreDomain == storeDomain {
			out = append(out, *l)
		}
	}
	return out
}

func (r *AccountLinkRepository) find(match func(*domain.AccountStoreLink) bool) *domain.AccountStoreLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if match(l) {
			c := *l
			return &c
		}
	}
	return nil
}

func (r *AccountLinkRepository) GetByStoreAndAccount(ctx context.Context, storeDomain, accountID string) (*domain.AccountStoreLink, error) {
	return r.find(func(l *domain.AccountStoreLink) bool {
		return l.StoreDomain == storeDomain && l.AccountID == accountID
	}), nil
}

func (r *AccountLinkRepository) GetBySelectedInstance(ctx context.Context, storeDomain, instanceID string) (*domain.AccountStoreLink, error) {
	return r.find(func(l *domain.AccountStoreLink) bool {
		return l.StoreDomain == storeDomain && l.SelectedInstanceID == instanceID
	}), nil
}

func (r *AccountLinkRepository) GetActive(ctx context.Context, storeDomain string) (*domain.AccountStoreLink, error) {
	return r.find(func(l *domain.AccountStoreLink) bool {
		return l.StoreDomain == storeDomain && l.IsActive
	}), nil
}

func (r *AccountLinkRepository) DeactivateAll(ctx context.Context, storeDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.StoreDomain == storeDomain {
			l.IsActive = false
		}
	}
	return nil
}

func (r *AccountLinkRepository) Upsert(ctx context.Context, link *domain.AccountStoreLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *link
	for i, l := range r.links {
		if l.StoreDomain == link.StoreDomain && l.AccountID == link.AccountID {
			r.links[i] = &c
			return nil
		}
	}
	r.links = append(r.links, &c)
	return nil
}

func (r *AccountLinkRepository) Update(ctx context.Context, storeDomain, accountID string, update domain.LinkUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.StoreDomain == storeDomain && l.AccountID == accountID {
			update.Apply(l)
			l.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *AccountLinkRepository) DeleteByStore(ctx context.Context, storeDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.links[:0]
	for _, l := range r.links {
		if l.StoreDomain != storeDomain {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

// InstanceRepository is an in-memory ports.InstanceRepository
type InstanceRepository struct {
	Instances []*domain.Instance
}

func (r *InstanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Instance, error) {
	var out []*domain.Instance
	for _, i := range r.Instances {
		if i.AccountID == accountID {
			out = append(out, i)
		}
	}
	return out, nil
}

// PlacementRepository is an in-memory ports.PlacementRepository
type PlacementRepository struct {
	mu         sync.Mutex
	placements []*domain.Placement
}

// NewPlacementRepository creates an empty placement repository
func NewPlacementRepository() *PlacementRepository {
	return &PlacementRepository{}
}

func (r *PlacementRepository) SavePlacement(ctx context.Context, placement *domain.Placement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *placement
	for i, p := range r.placements {
		if p.StoreDomain == c.StoreDomain && p.Feature == c.Feature && p.Method == c.Method {
			r.placements[i] = &c
			return nil
		}
	}
	r.placements = append(r.placements, &c)
	return nil
}

func (r *PlacementRepository) GetPlacement(ctx context.Context, storeDomain string, feature domain.Feature, method domain.PlacementMethod) (*domain.Placement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.placements {
		if p.StoreDomain == storeDomain && p.Feature == feature && p.Method == method {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *PlacementRepository) ListPlacements(ctx context.Context, storeDomain string) ([]*domain.Placement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Placement
	for _, p := range r.placements {
		if p.StoreDomain == storeDomain {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *PlacementRepository) DeleteByStore(ctx context.Context, storeDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.placements[:0]
	for _, p := range r.placements {
		if p.StoreDomain != storeDomain {
			kept = append(kept, p)
		}
	}
	r.placements = kept
	return nil
}
