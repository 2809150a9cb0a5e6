package cache

import (
	"context"
	"fmt"
	"time"

	"sif-shopify-layer/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps OAuth state nonces in Redis so any replica can finish a handshake
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a state store on an existing client
func NewRedisStateStore(client *redis.Client) ports.StateStore {
	return &RedisStateStore{client: client}
}

func stateKey(state string) string {
	return fmt.Sprintf("sif:oauth_state:%s", state)
}

func (s *RedisStateStore) Save(ctx context.Context, state, shop string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKey(state), shop, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Consume reads and deletes the state in one round trip so a nonce is usable once
func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	shop, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return shop, nil
}
