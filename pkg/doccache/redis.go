package doccache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when the redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const connectTimeout = 5 * time.Second

// RedisConfig holds connection settings for the redis-backed store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// ensure redisStore implements Store
var _ Store = (*redisStore)(nil)

type redisStore struct {
	client *redis.Client
}

// NewRedis connects to redis and verifies the connection with a ping.
func NewRedis(cfg RedisConfig) (Store, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return body, true, nil
}

func (s *redisStore) SetWithTTL(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
