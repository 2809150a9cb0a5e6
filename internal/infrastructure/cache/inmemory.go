package cache

import (
	"context"
	"sync"
	"time"

	"sif-shopify-layer/internal/domain"
)

type configEntry struct {
	cfg       *domain.EffectiveConfig
	expiresAt time.Time
}

// InMemoryConfigCache implements ConfigCache in process.
// This is suitable for single-instance deployments and testing.
type InMemoryConfigCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]configEntry
}

// NewInMemoryConfigCache creates a new in-memory config cache
func NewInMemoryConfigCache(ttl time.Duration) *InMemoryConfigCache {
	if ttl <= 0 {
		ttl = DefaultConfigTTL
	}
	return &InMemoryConfigCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]map[string]configEntry),
	}
}

func (c *InMemoryConfigCache) Get(ctx context.Context, shop, instanceID string) (*domain.EffectiveConfig, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[shop][configField(instanceID)]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.cfg, true, nil
}

func (c *InMemoryConfigCache) Set(ctx context.Context, shop, instanceID string, cfg *domain.EffectiveConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields, ok := c.entries[shop]
	if !ok {
		fields = make(map[string]configEntry)
		c.entries[shop] = fields
	}
	fields[configField(instanceID)] = configEntry{cfg: cfg, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *InMemoryConfigCache) Invalidate(ctx context.Context, shop string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, shop)
	return nil
}

type stateEntry struct {
	shop      string
	expiresAt time.Time
}

// InMemoryStateStore implements StateStore in process
type InMemoryStateStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]stateEntry
}

// NewInMemoryStateStore creates a new in-memory state store
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		now:     time.Now,
		entries: make(map[string]stateEntry),
	}
}

func (s *InMemoryStateStore) Save(ctx context.Context, state, shop string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[state] = stateEntry{shop: shop, expiresAt: now.Add(ttl)}
	return nil
}

func (s *InMemoryStateStore) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[state]
	if !ok {
		return "", nil
	}
	delete(s.entries, state)
	if s.now().After(e.expiresAt) {
		return "", nil
	}
	return e.shop, nil
}
