package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultConfigTTL bounds how stale a cached widget configuration can be
const DefaultConfigTTL = 30 * time.Second

// notConfigured caches a resolution that found no store or link
const notConfigured = "null"

// anyInstance names the entry for lookups without an instance id
const anyInstance = "_"

// RedisConfigCache keeps each resolved configuration under its own key with its
// own TTL. A per-store set indexes the keys so a link write can drop every
// instance of the store at once.
type RedisConfigCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisConfigCache creates a config cache on an existing client. The caller owns the client.
func NewRedisConfigCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ports.ConfigCache {
	if ttl <= 0 {
		ttl = DefaultConfigTTL
	}
	return &RedisConfigCache{client: client, ttl: ttl, logger: logger}
}

func indexKey(shop string) string {
	return fmt.Sprintf("sif:config:%s", shop)
}

func entryKey(shop, instanceID string) string {
	return fmt.Sprintf("sif:config:%s:%s", shop, configField(instanceID))
}

func configField(instanceID string) string {
	if instanceID == "" {
		return anyInstance
	}
	return instanceID
}

func (c *RedisConfigCache) Get(ctx context.Context, shop, instanceID string) (*domain.EffectiveConfig, bool, error) {
	key := entryKey(shop, instanceID)
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get config from cache: %w", err)
	}
	if data == notConfigured {
		return nil, true, nil
	}

	var cfg domain.EffectiveConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Dropping corrupted config cache entry")
		_ = c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &cfg, true, nil
}

func (c *RedisConfigCache) Set(ctx context.Context, shop, instanceID string, cfg *domain.EffectiveConfig) error {
	data := notConfigured
	if cfg != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = string(raw)
	}

	key := entryKey(shop, instanceID)
	index := indexKey(shop)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, index, key)
		// the index only names keys to delete; expired members are harmless
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set config in cache: %w", err)
	}
	return nil
}

func (c *RedisConfigCache) Invalidate(ctx context.Context, shop string) error {
	index := indexKey(shop)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate config cache: %w", err)
	}
	if err := c.client.Del(ctx, append(keys, index)...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate config cache: %w", err)
	}
	return nil
}
