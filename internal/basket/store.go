package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the basket persistence the checkout flow depends on.
// GetBasket returns (nil, nil) when the user has no cart.
type Store interface {
	GetBasket(ctx context.Context, userName string) (*ShoppingCart, error)
	SaveBasket(ctx context.Context, cart *ShoppingCart) error
	DeleteBasket(ctx context.Context, userName string) error
}

// RedisStore keeps one JSON cart document per user.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. A zero ttl keeps
// baskets until they are deleted at checkout.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func basketKey(userName string) string {
	return "basket:" + userName
}

func (s *RedisStore) GetBasket(ctx context.Context, userName string) (*ShoppingCart, error) {
	data, err := s.client.Get(ctx, basketKey(userName)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get basket %q: %w", userName, err)
	}

	var cart ShoppingCart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("decode basket %q: %w", userName, err)
	}
	return &cart, nil
}

func (s *RedisStore) SaveBasket(ctx context.Context, cart *ShoppingCart) error {
	if cart.UserName == "" {
		return errors.New("save basket: user name is required")
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode basket %q: %w", cart.UserName, err)
	}

	if err := s.client.Set(ctx, basketKey(cart.UserName), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save basket %q: %w", cart.UserName, err)
	}
	return nil
}

func (s *RedisStore) DeleteBasket(ctx context.Context, userName string) error {
	if err := s.client.Del(ctx, basketKey(userName)).Err(); err != nil {
		return fmt.Errorf("delete basket %q: %w", userName, err)
	}
	return nil
}

// NewRedisClient connects to Redis using a redis:// URL and verifies
// the connection with a ping.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
