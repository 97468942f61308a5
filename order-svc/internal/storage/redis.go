package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tabletap/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCartStore keeps each cart as one JSON document; every save replaces it.
type RedisCartStore struct {
	Client *redis.Client
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{Client: client}
}

func (s *RedisCartStore) LoadCart(ctx context.Context, key string) (*domain.Cart, error) {
	data, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, err
	}

	cart := domain.NewCart()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", key, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

// SaveCart writes the whole snapshot. A zero ttl keeps the key until the next write.
func (s *RedisCartStore) SaveCart(ctx context.Context, key string, cart *domain.Cart, ttl time.Duration) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key, payload, ttl).Err()
}

func (s *RedisCartStore) DeleteCart(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}
